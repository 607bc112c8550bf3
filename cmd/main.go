package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"sunwave/internal/services"
	"sunwave/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("SUNWAVE_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var provider services.Provider
	if config.Provider.APIKey != "" {
		if svc, err := services.NewSunoService(config.Provider, nil, logger); err == nil {
			provider = svc
		} else {
			logger.Warn("provider not configured", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Provider:   provider,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "sunwave",
		Usage:    "Generate AI music and track tasks from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
