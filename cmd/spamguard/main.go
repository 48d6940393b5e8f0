package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/core"
	"github.com/mikey/spamguard/internal/di"
	"github.com/mikey/spamguard/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "spamguard",
		Short:         "Classify email text as spam or ham with a pre-trained model",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			// Build the dependency injection container
			container, err := di.BuildContainer(cfg)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}

			return container.Invoke(func(
				logger *zap.Logger,
				service *core.SpamFilterService,
				frontends []ports.Frontend,
			) error {
				return run(cmd.Context(), logger, service, frontends)
			})
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to config file (default: search /etc/spamguard, $HOME/.spamguard, ./configs, .)")
	return cmd
}

// run starts every frontend and blocks until ctx is cancelled
func run(ctx context.Context, logger *zap.Logger, service *core.SpamFilterService, frontends []ports.Frontend) error {
	defer logger.Sync()

	if !service.Ready() {
		logger.Warn("Serving without a model, analysis requests will fail",
			zap.Error(service.LoadError()))
	}

	started := make([]ports.Frontend, 0, len(frontends))
	defer func() {
		// Stop in reverse start order
		for i := len(started) - 1; i >= 0; i-- {
			if err := started[i].Stop(); err != nil {
				logger.Error("Failed to stop frontend",
					zap.String("frontend", started[i].Name()),
					zap.Error(err))
			}
		}
		logger.Info("Shutdown complete")
	}()

	for _, f := range frontends {
		if err := f.Start(); err != nil {
			logger.Error("Failed to start frontend", zap.String("frontend", f.Name()), zap.Error(err))
			return fmt.Errorf("start %s: %w", f.Name(), err)
		}
		started = append(started, f)
	}

	<-ctx.Done()
	logger.Info("Shutting down...")
	return nil
}
