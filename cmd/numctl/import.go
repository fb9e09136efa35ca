package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"number-inventory/internal/lifecycle"
)

func newImportCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk import numbers from a CSV file",
		Long: `Reads a header-first CSV (number, serviceType, specialType, status,
allocatedTo, remarks) and creates one record per row. Rows fail independently;
the command reports every failed line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if as == "" {
				as = a.Config.Seed.AdminUsername
			}
			u, err := a.Store.FindUserByUsername(ctx, as)
			if err != nil {
				return fmt.Errorf("import as %q: %w", as, err)
			}
			if !u.IsActive {
				return fmt.Errorf("import as %q: account is deactivated", as)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := lifecycle.CSVRows(f)
			if err != nil {
				return err
			}
			res, err := a.Engine.Import(ctx, lifecycle.Actor{ID: u.ID, Role: u.Role}, rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Import completed: %d successful, %d failed\n", res.SuccessCount, res.FailedCount)
			for _, e := range res.Errors {
				fmt.Fprintln(out, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "username recorded as the performer (default SEED_ADMIN_USERNAME)")
	return cmd
}
