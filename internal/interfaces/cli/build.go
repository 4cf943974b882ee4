package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/precedex/precedex/internal/app"
)

func newBuildCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Rebuild the similarity graph from the case store",
		Long:  "Fetches every complete case, rebuilds the similarity graph, and persists it\nto the configured snapshot backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newCLILogger(cfg)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, log, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Engine.LoadFromStore(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Built graph from %d cases: %d nodes, %d edges, %d similarity pairs (threshold %.2f) in %s\n",
				stats.Cases, stats.Nodes, stats.Edges, stats.SimilarPairs, stats.Threshold, stats.Elapsed)
			return nil
		},
	}
}
