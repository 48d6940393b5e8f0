package factory

import (
	"fmt"
	"sync"

	"github.com/mikey/spamguard/internal/adapters/model"
	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ModelFactory loads the pre-trained artifacts once per process
type ModelFactory struct {
	cfg            config.ModelConfig
	logger         *zap.Logger
	loadClassifier func(path string) (core.Classifier, error)
	loadVectorizer func(path string) (core.Vectorizer, error)

	once   sync.Once
	models *core.ModelSet
}

// NewModelFactory creates a new model factory
func NewModelFactory(cfg *config.Config, logger *zap.Logger) *ModelFactory {
	return &ModelFactory{
		cfg:            cfg.GetModel(),
		logger:         logger,
		loadClassifier: model.LoadClassifier,
		loadVectorizer: model.LoadVectorizer,
	}
}

// Load returns the artifact pair, reading the files on the first call only.
// A failed load is not an error for the caller: the returned set has both
// artifacts nil and LoadErr populated.
func (f *ModelFactory) Load() *core.ModelSet {
	f.once.Do(func() {
		f.models = f.load()
	})
	return f.models
}

func (f *ModelFactory) load() *core.ModelSet {
	var (
		g          errgroup.Group
		classifier core.Classifier
		vectorizer core.Vectorizer
	)

	g.Go(func() error {
		var err error
		classifier, err = f.loadClassifier(f.cfg.ClassifierPath)
		return err
	})
	g.Go(func() error {
		var err error
		vectorizer, err = f.loadVectorizer(f.cfg.VectorizerPath)
		return err
	})

	err := g.Wait()
	if err == nil {
		err = checkCompatible(classifier, vectorizer)
	}
	if err != nil {
		f.logger.Error("Model loading failed",
			zap.String("classifier_path", f.cfg.ClassifierPath),
			zap.String("vectorizer_path", f.cfg.VectorizerPath),
			zap.Error(err))
		return &core.ModelSet{LoadErr: err}
	}

	f.logger.Info("Loaded model artifacts",
		zap.String("classifier_path", f.cfg.ClassifierPath),
		zap.String("vectorizer_path", f.cfg.VectorizerPath),
		zap.String("classifier", fmt.Sprintf("%T", classifier)),
		zap.Int("features", vectorizer.Dim()))

	return &core.ModelSet{
		Classifier: classifier,
		Vectorizer: vectorizer,
	}
}

// checkCompatible rejects a pair whose feature spaces differ
func checkCompatible(classifier core.Classifier, vectorizer core.Vectorizer) error {
	sized, ok := classifier.(interface{ Dim() int })
	if !ok {
		return nil
	}
	if sized.Dim() != vectorizer.Dim() {
		return fmt.Errorf("classifier expects %d features but vectorizer produces %d",
			sized.Dim(), vectorizer.Dim())
	}
	return nil
}
