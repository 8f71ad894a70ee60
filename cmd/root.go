package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ghtrend/internal/trending"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagPeriod  string
	flagRefresh bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "ghtrend",
	Short: "TUI GitHub trending dashboard",
	Long:  "ghtrend shows what is trending on GitHub, per language, in a clean terminal dashboard backed by a local cache.",
	RunE:  runTUI,
}

func init() {
	rootCmd.Flags().StringVar(&flagPeriod, "period", "", "trending window: daily, weekly or monthly")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force a fresh fetch, ignoring cached data")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ghtrend %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// resolvePeriod applies the --period override on top of the configured
// default window.
func resolvePeriod(configured trending.Period) (trending.Period, error) {
	if flagPeriod == "" {
		return configured, nil
	}
	p := trending.Period(flagPeriod)
	if !p.Valid() {
		return "", fmt.Errorf("invalid --period %q (want daily, weekly or monthly)", flagPeriod)
	}
	return p, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
