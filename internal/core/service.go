package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SpamFilterService is the core service for spam detection
type SpamFilterService struct {
	models     *ModelSet
	normalizer Normalizer
	logger     *zap.Logger
}

// NewSpamFilterService creates a new spam filter service
func NewSpamFilterService(models *ModelSet, normalizer Normalizer, logger *zap.Logger) *SpamFilterService {
	if models == nil {
		models = &ModelSet{}
	}
	return &SpamFilterService{
		models:     models,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Ready reports whether the artifacts are loaded and predictions can run
func (s *SpamFilterService) Ready() bool {
	return s.models.Available()
}

// LoadError returns the error recorded when the artifacts failed to load
func (s *SpamFilterService) LoadError() error {
	return s.models.LoadErr
}

// AnalyzeText classifies free-text email content.
//
// Blank input yields ErrEmptyInput and missing artifacts yield
// ErrModelUnavailable; in both cases neither artifact is invoked.
func (s *SpamFilterService) AnalyzeText(ctx context.Context, text string) (*Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if !s.models.Available() {
		return nil, ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processingID := uuid.NewString()
	cleaned := s.normalizer.Normalize(text)

	vector, err := s.models.Vectorizer.Transform(cleaned)
	if err != nil {
		s.logger.Error("Vectorizer failed",
			zap.String("processing_id", processingID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: vectorize: %v", ErrPrediction, err)
	}

	labels, err := s.models.Classifier.Predict([]FeatureVector{vector})
	if err != nil {
		s.logger.Error("Classifier failed",
			zap.String("processing_id", processingID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: predict: %v", ErrPrediction, err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: classifier returned no labels", ErrPrediction)
	}

	label := labels[0]
	if label != LabelSpam && label != LabelHam {
		s.logger.Warn("Unexpected classifier label",
			zap.String("processing_id", processingID),
			zap.Int("label", int(label)))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedLabel, label)
	}

	verdict := &Verdict{
		Label:        label,
		IsSpam:       label == LabelSpam,
		AnalyzedAt:   time.Now(),
		ProcessingID: processingID,
	}

	s.logger.Debug("Analyzed text",
		zap.String("processing_id", processingID),
		zap.Int("input_size", len(text)),
		zap.Int("features", len(vector)),
		zap.Bool("is_spam", verdict.IsSpam))

	return verdict, nil
}
