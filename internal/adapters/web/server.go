// Package web serves the single-page analysis form, a JSON analysis endpoint
// and health probes over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"

	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/ports"
	"go.uber.org/zap"
)

// Server implements the HTTP front end
type Server struct {
	service   ports.SpamAnalyzer
	logger    *zap.Logger
	cfg       config.ServerConfig
	templates *template.Template
	handler   http.Handler

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

var _ ports.Frontend = (*Server)(nil)

// NewServer creates a new HTTP front end. Templates are parsed here so a
// broken template fails at startup rather than on the first request.
func NewServer(service ports.SpamAnalyzer, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		service:   service,
		logger:    logger,
		cfg:       cfg,
		templates: templates,
	}
	s.handler = chain(s.routes(), withRequestID, withLogging(logger), withRecovery(logger))

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /analyze", s.analyze)
	mux.HandleFunc("POST /api/analyze", s.apiAnalyze)
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("GET /readyz", s.readyz)
	return mux
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Name identifies the frontend in logs
func (s *Server) Name() string {
	return "http"
}

// Addr returns the bound address once the server has started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.cfg.ListenAddress
	}
	return s.listener.Addr().String()
}

// Start starts the HTTP server
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.mu.Lock()
	s.http = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("HTTP server starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the HTTP server down
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
