package main

import (
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Build the index and print its statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ix, err := buildIndex(cmd.Context(), cfg, engineMetrics(cfg.Metrics.Enabled))
		if err != nil {
			return err
		}
		return report.WriteStats(cmd.OutOrStdout(), ix.Stats())
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
