package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ghtrend/internal/cache"
	"ghtrend/internal/config"
	"ghtrend/internal/fetch"
	"ghtrend/internal/loader"
	"ghtrend/internal/trending"
)

var flagListLang string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print trending repositories to stdout",
	Long: `Fetch one trending page and print it, for piping into grep or fzf.

Without --lang it prints the overall feed; --period picks the window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		period, err := resolvePeriod(cfg.DefaultPeriod())
		if err != nil {
			return err
		}

		mem := cache.NewMemory(cfg.MemoryTTL())
		client := fetch.NewClient(mem)

		var store *cache.Store
		if s, err := cache.Open(config.CachePath()); err == nil {
			store = s
			defer store.Close()
		}

		ld := loader.New(mem, store, client, cfg.SnapshotMaxAge())

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var repos []trending.Repository
		if flagRefresh {
			repos, err = ld.Refresh(ctx, flagListLang, period)
		} else {
			repos, err = ld.Load(ctx, flagListLang, period)
		}
		if err != nil {
			return fmt.Errorf("fetching trending: %w", err)
		}

		for i, r := range repos {
			fmt.Println(formatListLine(i+1, r))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&flagListLang, "lang", "", "filter by language (e.g., Go, Rust)")
	listCmd.Flags().StringVar(&flagPeriod, "period", "", "trending window: daily, weekly or monthly")
	listCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "bypass the cache")
}

func formatListLine(rank int, r trending.Repository) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%2d. %-40s ★ %d", rank, r.FullName, r.Stars)
	if r.PeriodStars > 0 {
		fmt.Fprintf(&b, " (+%d %s)", r.PeriodStars, r.PeriodLabel)
	}
	if r.Language != "" {
		fmt.Fprintf(&b, " [%s]", r.Language)
	}
	return b.String()
}
