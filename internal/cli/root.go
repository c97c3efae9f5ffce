package cli

import (
	"context"
	"time"

	"profilelens/internal/config"
	"profilelens/internal/errors"
	"profilelens/internal/observability"

	"github.com/spf13/cobra"
)

type contextKey int

const (
	configKey contextKey = iota
	loggerKey
)

var rootCmd = &cobra.Command{
	Use:   "profilelens",
	Short: "Analyze professional profiles with hosted NLP models",
	Long: `ProfileLens scores a LinkedIn-style profile, extracts keywords, summarizes it
and suggests improvements using a hosted text-inference service.

Analyze profile files from the command line, render stored results as reports,
or run the same pipeline behind an HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the command tree with cfg and logger reachable from every
// subcommand's context
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext panics when called outside Execute
func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		panic("cli: config missing from command context")
	}
	return cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	logger, ok := ctx.Value(loggerKey).(*errors.Logger)
	if !ok {
		panic("cli: logger missing from command context")
	}
	return logger
}

// startObservability initializes telemetry for a one-shot command. The
// returned function flushes it.
func startObservability(cfg *config.Config, logger *errors.Logger) (*observability.ObservabilityManager, func(), error) {
	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return nil, nil, err
	}

	return om, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd, reportCmd, serveCmd, versionCmd)
}
