package core

// Vectorizer maps normalized text to a fixed-length feature vector
type Vectorizer interface {
	// Transform converts one normalized document into a feature vector
	Transform(text string) (FeatureVector, error)

	// Dim returns the length of every vector produced by Transform
	Dim() int
}

// Classifier maps feature vectors to binary labels
type Classifier interface {
	// Predict returns one label per vector in the batch
	Predict(batch []FeatureVector) ([]Label, error)
}

// Normalizer produces the canonical form of text expected by the vectorizer
type Normalizer interface {
	Normalize(text string) string
}
