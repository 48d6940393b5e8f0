package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/core"
	"github.com/mikey/spamguard/internal/factory"
	"github.com/mikey/spamguard/internal/logging"
	"github.com/mikey/spamguard/internal/ports"
	"github.com/mikey/spamguard/internal/utils"
	"github.com/mikey/spamguard/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewModelFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(tp *utils.TextProcessor) core.Normalizer {
		return tp
	}); err != nil {
		return nil, err
	}

	// Register model artifacts, loaded once
	if err := container.Provide(func(f *factory.ModelFactory) *core.ModelSet {
		return f.Load()
	}); err != nil {
		return nil, err
	}

	// Register spam filter service
	if err := container.Provide(core.NewSpamFilterService); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.SpamFilterService) ports.SpamAnalyzer {
		return s
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetSMTP().WhitelistedDomains, logger.Named("whitelist"))
	}); err != nil {
		return nil, err
	}

	// Register frontends
	if err := container.Provide(func(f *factory.FrontendFactory) ([]ports.Frontend, error) {
		return f.CreateFrontends()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
