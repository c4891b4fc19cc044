package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/field-gap-tracker/internal/bootstrap"
	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/observability/logging"
)

const serviceName = "gapctl"

// rootCommand builds the operator CLI. Configuration comes from the same environment as
// the api; commands never publish events.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gapctl",
		Short:         "Operate the field gap tracker catalog and assessments",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(
		importCommand(),
		exportCommand(),
		statsCommand(),
		filtersCommand(),
	)
	return rootCmd
}

func loadConfig() (config.Config, *slog.Logger) {
	cfg := config.Load()
	cfg.EventsEnabled = false
	logger := logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger
}

func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, logger := loadConfig()
	return bootstrap.New(ctx, cfg, bootstrap.Hooks{Logger: logger})
}
