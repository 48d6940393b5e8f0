package factory

import (
	"fmt"

	"github.com/mikey/spamguard/internal/adapters/filter"
	"github.com/mikey/spamguard/internal/adapters/web"
	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/ports"
	"github.com/mikey/spamguard/internal/utils"
	"github.com/mikey/spamguard/internal/whitelist"
	"go.uber.org/zap"
)

// FrontendFactory creates the frontends enabled by configuration
type FrontendFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	analyzer  ports.SpamAnalyzer
	text      *utils.TextProcessor
	whitelist *whitelist.Checker
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	analyzer ports.SpamAnalyzer,
	text *utils.TextProcessor,
	checker *whitelist.Checker,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:       cfg,
		logger:    logger,
		analyzer:  analyzer,
		text:      text,
		whitelist: checker,
	}
}

// CreateFrontends returns the HTTP server, followed by the Postfix content
// filter when smtp.enabled is set
func (f *FrontendFactory) CreateFrontends() ([]ports.Frontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	server, err := web.NewServer(f.analyzer, f.logger.Named("http"), serverCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}
	frontends := []ports.Frontend{server}

	smtpCfg := f.cfg.GetSMTP()
	if smtpCfg.Enabled {
		frontends = append(frontends, filter.NewPostfixFilter(
			f.analyzer,
			f.whitelist,
			f.text,
			f.logger.Named("smtp"),
			smtpCfg,
		))
	}

	return frontends, nil
}
