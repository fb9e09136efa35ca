package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account from SEED_ADMIN_* settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Config.Seed.AdminPassword == "" {
				return errors.New("SEED_ADMIN_PASSWORD is required")
			}
			u, created, err := a.SeedAdmin(cmd.Context())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", u.Username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", u.Username)
			}
			return nil
		},
	}
}
