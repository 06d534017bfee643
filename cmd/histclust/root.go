package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var debug bool

var rootCmd = &cobra.Command{
	Use:   "histclust",
	Short: "Categorize browsing history into topical clusters",
	Long: `histclust loads browsing history from a Chrome profile or a CSV export,
groups visits into topics with TF-IDF and k-means, and writes hour-of-day
and domain summaries.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
