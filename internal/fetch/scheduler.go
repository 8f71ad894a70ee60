package fetch

import (
	"context"
	"sync"

	"ghtrend/internal/trending"
)

// DefaultConcurrency caps simultaneous in-flight page requests.
const DefaultConcurrency = 5

// Request is the unit of scheduling.
type Request struct {
	Language string
	Period   trending.Period
}

// Result pairs a request with its outcome. Err == nil means the transport
// round trip succeeded, even when Repos is empty.
type Result struct {
	Request
	Repos []trending.Repository
	Err   error
}

func (r Result) OK() bool { return r.Err == nil }

// FetchMany runs the requests under a sliding-window concurrency ceiling:
// a new request is admitted as soon as any in-flight one finishes, not in
// batches. The returned slice is positionally aligned to reqs regardless of
// completion order, and every request produces exactly one result. Each
// request carries its own timeout; one timing out never cancels a sibling.
func (c *Client) FetchMany(ctx context.Context, reqs []Request, limit int) []Result {
	return c.FetchManyFunc(ctx, reqs, limit, nil)
}

// FetchManyFunc is FetchMany with a per-completion callback for consumers
// that want results as they land (the bulk return only materializes once
// everything is done). notify may be nil; it is never called concurrently
// with itself.
func (c *Client) FetchManyFunc(ctx context.Context, reqs []Request, limit int, notify func(Result)) []Result {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, limit)
		results = make([]Result, len(reqs))
	)

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			repos, err := c.FetchOne(ctx, req.Language, req.Period)
			res := Result{Request: req, Repos: repos, Err: err}
			results[i] = res
			if notify != nil {
				mu.Lock()
				notify(res)
				mu.Unlock()
			}
		}(i, req)
	}

	wg.Wait()
	return results
}

// FetchManyWithRetry re-runs only the failed subset up to rounds extra times,
// splicing each round's outcomes back into the original positions. A request
// that fails every round keeps its most recent failure. Total attempts per
// request are bounded by rounds+1.
func (c *Client) FetchManyWithRetry(ctx context.Context, reqs []Request, limit, rounds int) []Result {
	results := c.FetchMany(ctx, reqs, limit)

	for ; rounds > 0; rounds-- {
		var failed []int
		for i, res := range results {
			if !res.OK() {
				failed = append(failed, i)
			}
		}
		if len(failed) == 0 {
			break
		}

		retryReqs := make([]Request, len(failed))
		for j, i := range failed {
			retryReqs[j] = results[i].Request
		}
		for j, res := range c.FetchMany(ctx, retryReqs, limit) {
			results[failed[j]] = res
		}
	}
	return results
}
