package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List recently debunked viral claims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		facts := engine.FetchTrendingFacts(ctx)

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, facts)
		}
		for _, f := range facts {
			fmt.Fprintf(out, "[%s] %s\n    %s\n", f.Verdict, f.Title, f.Claim)
			if f.SourceName != "" || f.SourceURL != "" {
				fmt.Fprintf(out, "    source: %s %s\n", f.SourceName, f.SourceURL)
			}
		}
		return nil
	},
}
