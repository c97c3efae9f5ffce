package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"profilelens/internal/cli"
	"profilelens/internal/config"
	"profilelens/internal/errors"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(os.Getenv("PROFILELENS_CONFIG"))
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		os.Exit(1)
	}

	// Only the log level is applied live; everything else needs a restart
	loader.Watch(func(updated *config.Config, event fsnotify.Event) {
		if err := logger.SetLevel(updated.App.LogLevel); err != nil {
			logger.LogError(err, "Ignoring invalid log level", "file", event.Name)
			return
		}
		logger.Info("Configuration reloaded", "file", event.Name, "log_level", updated.App.LogLevel)
	})

	logger.Debug("Starting profilelens",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"inference_provider", cfg.Inference.Provider)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}
