package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print inventory counts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.Stats.Summary(ctx)
			if err != nil {
				return err
			}
			bySvc, err := a.Stats.ByServiceType(ctx)
			if err != nil {
				return err
			}
			bySpecial, err := a.Stats.BySpecialType(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"summary":       sum,
				"byServiceType": bySvc,
				"bySpecialType": bySpecial,
			})
		},
	}
}
