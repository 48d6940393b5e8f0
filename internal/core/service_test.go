package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/spamguard/internal/core"
	"github.com/mikey/spamguard/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVectorizer struct {
	calls []string
	err   error
}

func (f *fakeVectorizer) Transform(text string) (core.FeatureVector, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return core.FeatureVector{float64(len(text)), 1}, nil
}

func (f *fakeVectorizer) Dim() int { return 2 }

type fakeClassifier struct {
	label   core.Label
	labels  []core.Label
	batches [][]core.FeatureVector
	err     error
}

func (f *fakeClassifier) Predict(batch []core.FeatureVector) ([]core.Label, error) {
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return nil, f.err
	}
	if f.labels != nil {
		return f.labels, nil
	}
	return []core.Label{f.label}, nil
}

func newService(vec core.Vectorizer, clf core.Classifier) *core.SpamFilterService {
	models := &core.ModelSet{Vectorizer: vec, Classifier: clf}
	return core.NewSpamFilterService(models, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())
}

func TestAnalyzeTextEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		vec := &fakeVectorizer{}
		clf := &fakeClassifier{label: core.LabelSpam}
		svc := newService(vec, clf)

		verdict, err := svc.AnalyzeText(context.Background(), input)
		assert.Nil(t, verdict)
		assert.ErrorIs(t, err, core.ErrEmptyInput)
		assert.Empty(t, vec.calls)
		assert.Empty(t, clf.batches)
	}
}

func TestAnalyzeTextEmptyInputCheckedFirst(t *testing.T) {
	svc := core.NewSpamFilterService(&core.ModelSet{LoadErr: errors.New("boom")}, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())

	_, err := svc.AnalyzeText(context.Background(), "  ")
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestAnalyzeTextModelUnavailable(t *testing.T) {
	loadErr := errors.New("open vectorizer.gob: no such file or directory")
	svc := core.NewSpamFilterService(&core.ModelSet{LoadErr: loadErr}, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())

	assert.False(t, svc.Ready())
	assert.Equal(t, loadErr, svc.LoadError())

	verdict, err := svc.AnalyzeText(context.Background(), "Win a free cruise")
	assert.Nil(t, verdict)
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
}

func TestAnalyzeTextHalfLoadedSetIsUnavailable(t *testing.T) {
	vec := &fakeVectorizer{}
	svc := newService(vec, nil)

	_, err := svc.AnalyzeText(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
	assert.Empty(t, vec.calls)
}

func TestAnalyzeTextLabels(t *testing.T) {
	tests := []struct {
		name     string
		label    core.Label
		wantSpam bool
	}{
		{"spam", core.LabelSpam, true},
		{"ham", core.LabelHam, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := &fakeVectorizer{}
			clf := &fakeClassifier{label: tt.label}
			svc := newService(vec, clf)
			require.True(t, svc.Ready())

			verdict, err := svc.AnalyzeText(context.Background(), "Hello, World! Don't Worry")
			require.NoError(t, err)
			assert.Equal(t, tt.label, verdict.Label)
			assert.Equal(t, tt.wantSpam, verdict.IsSpam)
			assert.NotEmpty(t, verdict.ProcessingID)
			assert.False(t, verdict.AnalyzedAt.IsZero())

			require.Equal(t, []string{"hello world dont worry"}, vec.calls)
			require.Len(t, clf.batches, 1)
			assert.Len(t, clf.batches[0], 1)
		})
	}
}

func TestAnalyzeTextUsesFirstLabel(t *testing.T) {
	svc := newService(&fakeVectorizer{}, &fakeClassifier{labels: []core.Label{core.LabelSpam, core.LabelHam}})

	verdict, err := svc.AnalyzeText(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, verdict.IsSpam)
}

func TestAnalyzeTextUnexpectedLabel(t *testing.T) {
	svc := newService(&fakeVectorizer{}, &fakeClassifier{label: core.Label(7)})

	verdict, err := svc.AnalyzeText(context.Background(), "text")
	assert.Nil(t, verdict)
	assert.ErrorIs(t, err, core.ErrUnexpectedLabel)
}

func TestAnalyzeTextPredictionFailures(t *testing.T) {
	t.Run("vectorizer", func(t *testing.T) {
		clf := &fakeClassifier{}
		svc := newService(&fakeVectorizer{err: errors.New("dimension mismatch")}, clf)

		_, err := svc.AnalyzeText(context.Background(), "text")
		assert.ErrorIs(t, err, core.ErrPrediction)
		assert.ErrorContains(t, err, "dimension mismatch")
		assert.Empty(t, clf.batches)
	})

	t.Run("classifier", func(t *testing.T) {
		svc := newService(&fakeVectorizer{}, &fakeClassifier{err: errors.New("bad weights")})

		_, err := svc.AnalyzeText(context.Background(), "text")
		assert.ErrorIs(t, err, core.ErrPrediction)
	})

	t.Run("no labels", func(t *testing.T) {
		svc := newService(&fakeVectorizer{}, &fakeClassifier{labels: []core.Label{}})

		_, err := svc.AnalyzeText(context.Background(), "text")
		assert.ErrorIs(t, err, core.ErrPrediction)
	})
}

func TestAnalyzeTextCancelledContext(t *testing.T) {
	vec := &fakeVectorizer{}
	svc := newService(vec, &fakeClassifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AnalyzeText(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, vec.calls)
}
