package factory

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mikey/spamguard/internal/adapters/model"
	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeArtifacts stores a two-term vectorizer and a linear classifier with dim weights
func writeArtifacts(t *testing.T, dim int) *config.Config {
	t.Helper()
	dir := t.TempDir()

	coef := make([]float64, dim)
	for i := range coef {
		coef[i] = 1
	}

	clfPath := filepath.Join(dir, "spam_classifier_model.gob")
	vecPath := filepath.Join(dir, "vectorizer.gob")
	require.NoError(t, model.WriteFile(clfPath, &model.LinearModel{
		Classes: []core.Label{core.LabelHam, core.LabelSpam},
		Coef:    coef,
	}))
	require.NoError(t, model.WriteFile(vecPath, &model.CountVectorizer{
		Vocabulary: map[string]int{"free": 0, "winner": 1},
	}))

	v := config.NewEmptyViper()
	v.Set("model.classifier_path", clfPath)
	v.Set("model.vectorizer_path", vecPath)
	return config.NewFromViper(v)
}

func TestModelFactoryLoad(t *testing.T) {
	f := NewModelFactory(writeArtifacts(t, 2), zap.NewNop())

	models := f.Load()
	require.NoError(t, models.LoadErr)
	require.True(t, models.Available())

	vec, err := models.Vectorizer.Transform("free winner")
	require.NoError(t, err)
	labels, err := models.Classifier.Predict([]core.FeatureVector{vec})
	require.NoError(t, err)
	assert.Equal(t, []core.Label{core.LabelSpam}, labels)
}

func TestModelFactoryMissingFile(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("model.classifier_path", filepath.Join(t.TempDir(), "absent.gob"))
	v.Set("model.vectorizer_path", filepath.Join(t.TempDir(), "absent-too.gob"))
	f := NewModelFactory(config.NewFromViper(v), zap.NewNop())

	models := f.Load()
	assert.False(t, models.Available())
	assert.Nil(t, models.Classifier)
	assert.Nil(t, models.Vectorizer)
	assert.ErrorIs(t, models.LoadErr, os.ErrNotExist)
}

func TestModelFactoryIncompatiblePair(t *testing.T) {
	f := NewModelFactory(writeArtifacts(t, 3), zap.NewNop())

	models := f.Load()
	assert.False(t, models.Available())
	assert.ErrorContains(t, models.LoadErr, "expects 3 features but vectorizer produces 2")
}

func TestModelFactoryLoadsOnce(t *testing.T) {
	var classifierReads, vectorizerReads atomic.Int32
	f := NewModelFactory(writeArtifacts(t, 2), zap.NewNop())
	f.loadClassifier = func(path string) (core.Classifier, error) {
		classifierReads.Add(1)
		return model.LoadClassifier(path)
	}
	f.loadVectorizer = func(path string) (core.Vectorizer, error) {
		vectorizerReads.Add(1)
		return model.LoadVectorizer(path)
	}

	first := f.Load()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Same(t, first, f.Load())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), classifierReads.Load())
	assert.Equal(t, int32(1), vectorizerReads.Load())
}

func TestModelFactoryFailureIsMemoized(t *testing.T) {
	var reads atomic.Int32
	f := NewModelFactory(writeArtifacts(t, 2), zap.NewNop())
	f.loadClassifier = func(string) (core.Classifier, error) {
		reads.Add(1)
		return nil, errors.New("unpickling error")
	}

	for i := 0; i < 3; i++ {
		models := f.Load()
		assert.False(t, models.Available())
		assert.ErrorContains(t, models.LoadErr, "unpickling error")
	}
	assert.Equal(t, int32(1), reads.Load())
}
