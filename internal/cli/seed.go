package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"kpiteam/internal/domain/kpi"
)

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the built-in seed data set",
		Long:  "Print the seed data used offline and as the backend's initial content. Text format is YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(kpi.Seed())
			}
			_, err := out.Write(kpi.SeedYAML())
			return err
		},
	}
}
