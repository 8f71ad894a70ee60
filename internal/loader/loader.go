// Package loader composes the cache tiers and the fetch scheduler into the
// read path the dashboard uses: memory first, then the persistent snapshot,
// then the network.
package loader

import (
	"context"
	"fmt"
	"time"

	"ghtrend/internal/cache"
	"ghtrend/internal/fetch"
	"ghtrend/internal/trending"
)

type Loader struct {
	mem    *cache.Memory
	store  *cache.Store // optional; nil disables the persistent tier
	client *fetch.Client

	// snapshotTTL is the max age at which a persisted snapshot is still
	// worth painting; longer than the memory TTL so a restart has
	// something to show before the first fetch lands.
	snapshotTTL time.Duration

	concurrency int
	retryRounds int
}

func New(mem *cache.Memory, store *cache.Store, client *fetch.Client, snapshotTTL time.Duration) *Loader {
	return &Loader{
		mem:         mem,
		store:       store,
		client:      client,
		snapshotTTL: snapshotTTL,
		concurrency: fetch.DefaultConcurrency,
		retryRounds: 1,
	}
}

// SetLimits overrides the scheduler's concurrency ceiling and retry rounds.
func (l *Loader) SetLimits(concurrency, retryRounds int) {
	if concurrency > 0 {
		l.concurrency = concurrency
	}
	if retryRounds >= 0 {
		l.retryRounds = retryRounds
	}
}

// Load is the cache-first read path. On a memory hit it returns immediately;
// on a snapshot hit it rehydrates the memory tier; otherwise it fetches,
// which itself populates the memory tier, and persists the result. The fetch
// result is returned directly without re-reading the cache. There is no
// in-flight de-duplication: two concurrent cold loads for the same key both
// fetch, and the later write wins.
func (l *Loader) Load(ctx context.Context, language string, period trending.Period) ([]trending.Repository, error) {
	if repos, ok := l.mem.GetValid(language, period, 0); ok {
		return repos, nil
	}

	key := trending.Key(language, period)
	if l.store != nil {
		if repos, ok, err := l.store.GetSnapshot(key, l.snapshotTTL); err == nil && ok {
			l.mem.Set(language, period, repos, 0)
			return repos, nil
		}
	}

	return l.Refresh(ctx, language, period)
}

// Refresh bypasses both cache tiers and fetches the live page, persisting a
// non-empty result. The section retry key and the --refresh flag land here.
func (l *Loader) Refresh(ctx context.Context, language string, period trending.Period) ([]trending.Repository, error) {
	repos, err := l.client.FetchOne(ctx, language, period)
	if err != nil {
		return nil, err
	}
	l.persist(language, period, repos)
	return repos, nil
}

// Preload warms the weekly and monthly windows for every language in the
// background; the default window is assumed already warm from the initial
// section loads. It never fails: per-request errors are returned only so the
// caller can show them, and an empty slice means a clean run.
func (l *Loader) Preload(ctx context.Context, languages []string) []error {
	var reqs []fetch.Request
	for _, lang := range languages {
		for _, period := range []trending.Period{trending.PeriodWeekly, trending.PeriodMonthly} {
			reqs = append(reqs, fetch.Request{Language: lang, Period: period})
		}
	}

	var errs []error
	for _, res := range l.client.FetchManyWithRetry(ctx, reqs, l.concurrency, l.retryRounds) {
		if !res.OK() {
			errs = append(errs, fmt.Errorf("preload %s: %w", trending.Key(res.Language, res.Period), res.Err))
			continue
		}
		l.persist(res.Language, res.Period, res.Repos)
	}
	return errs
}

// persist writes the snapshot tier. The memory tier is already handled by
// the client's sink on every successful fetch; empty results are not worth
// a row.
func (l *Loader) persist(language string, period trending.Period, repos []trending.Repository) {
	if l.store == nil || len(repos) == 0 {
		return
	}
	// A failed snapshot write only costs the next launch; the data is
	// already in memory and on screen.
	_ = l.store.PutSnapshot(trending.Key(language, period), repos)
	_ = l.store.SetLastRefresh()
}
