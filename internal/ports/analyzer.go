package ports

import (
	"context"

	"github.com/mikey/spamguard/internal/core"
)

// SpamAnalyzer defines the interface frontends use to classify text
type SpamAnalyzer interface {
	// AnalyzeText classifies free-text email content
	AnalyzeText(ctx context.Context, text string) (*core.Verdict, error)

	// Ready reports whether predictions can run
	Ready() bool

	// LoadError returns the artifact load failure, if any
	LoadError() error
}

var _ SpamAnalyzer = (*core.SpamFilterService)(nil)
