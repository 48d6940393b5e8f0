package core

import (
	"time"
)

// Label is the binary outcome produced by a classifier
type Label int

const (
	// LabelHam marks legitimate email
	LabelHam Label = 0
	// LabelSpam marks spam
	LabelSpam Label = 1
)

// FeatureVector is the fixed-length numeric representation of normalized text
type FeatureVector []float64

// Verdict represents the result of a single classification
type Verdict struct {
	Label        Label
	IsSpam       bool
	AnalyzedAt   time.Time
	ProcessingID string
}

// ModelSet holds the pre-trained artifacts loaded at startup.
// When loading failed both artifacts are nil and LoadErr is set.
type ModelSet struct {
	Classifier Classifier
	Vectorizer Vectorizer
	LoadErr    error
}

// Available reports whether both artifacts are present
func (m *ModelSet) Available() bool {
	return m != nil && m.Classifier != nil && m.Vectorizer != nil
}
