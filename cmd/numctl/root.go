package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"number-inventory/internal/app"
	"number-inventory/internal/config"
	"number-inventory/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "numctl",
		Short:         "Maintenance commands for the number inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newImportCmd(), newStatsCmd())
	return root
}

// openApp loads config from the environment and opens the service graph.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)
	return app.Open(ctx, cfg, log)
}
