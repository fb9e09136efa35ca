package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"number-inventory/internal/config"
	"number-inventory/internal/db"
	"number-inventory/pkg/utils"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			direction := args[0]

			dsn := cfg.DSN()
			if cfg.DB.Driver == "sqlite" {
				if direction == "down" {
					return fmt.Errorf("migrate down is only supported for pgx")
				}
				dsn = db.SQLiteDSN(dsn)
			}
			conn, err := utils.OpenDB(cmd.Context(), cfg.DB.Driver, dsn, utils.PoolConfig{})
			if err != nil {
				return err
			}
			defer conn.Close()

			if direction == "down" {
				err = db.Migrate(conn.DB, "down")
			} else {
				err = db.Prepare(cmd.Context(), conn.DB, cfg.DB.Driver)
			}
			if err != nil {
				return fmt.Errorf("migrate %s: %w", direction, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", direction)
			return nil
		},
	}
}
