package ports

// Frontend is a long-running surface that accepts text for analysis
type Frontend interface {
	// Name identifies the frontend in logs
	Name() string

	// Start begins serving without blocking
	Start() error

	// Stop stops the frontend service
	Stop() error
}
