package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ghtrend/internal/cache"
	"ghtrend/internal/config"
	"ghtrend/internal/fetch"
	"ghtrend/internal/loader"
	"ghtrend/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	period, err := resolvePeriod(cfg.DefaultPeriod())
	if err != nil {
		return err
	}

	mem := cache.NewMemory(cfg.MemoryTTL())

	// The snapshot store is a nicety, not a requirement: if the cache
	// directory is unusable we run memory-only.
	store, err := cache.Open(config.CachePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: snapshot cache unavailable: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	client := fetch.NewClient(mem)
	ld := loader.New(mem, store, client, cfg.SnapshotMaxAge())
	ld.SetLimits(cfg.Concurrency(), cfg.Retries())

	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	// When every snapshot is already past its max age, skip the cache walk
	// and go straight to the network.
	forceRefresh := flagRefresh
	if store != nil && store.NeedsRefresh(cfg.SnapshotMaxAge()) {
		forceRefresh = true
	}

	return tui.Run(tui.RunOpts{
		Cfg:          cfg,
		CfgPath:      cfgPath,
		Loader:       ld,
		Period:       period,
		Version:      version,
		ForceRefresh: forceRefresh,
		Preload:      cfg.PreloadEnabled(),
	})
}
