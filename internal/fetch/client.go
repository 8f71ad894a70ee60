package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ghtrend/internal/trending"
)

const (
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 5 * time.Second

	// A plain Go User-Agent gets the logged-out mobile page; a desktop
	// browser string keeps the markup the parser knows.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Sink receives successfully fetched listings. *cache.Memory satisfies it.
type Sink interface {
	Set(language string, period trending.Period, data []trending.Repository, ttl time.Duration)
}

// StatusError is a completed request that came back non-2xx.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github returned status %d", e.Code)
}

// Client fetches and parses trending pages. The zero value is not usable;
// construct with NewClient.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration

	// Sink, when set, receives every successful non-empty listing.
	Sink Sink
}

func NewClient(sink Sink) *Client {
	return &Client{
		HTTPClient: &http.Client{},
		BaseURL:    "https://github.com",
		UserAgent:  defaultUserAgent,
		Timeout:    DefaultTimeout,
		Sink:       sink,
	}
}

// PageURL builds the trending page address for a (language, period) pair.
// An empty language means the overall feed.
func (c *Client) PageURL(language string, period trending.Period) string {
	u := c.BaseURL + "/trending"
	if language != "" {
		u += "/" + url.PathEscape(language)
	}
	return u + "?since=" + string(period)
}

// FetchOne requests and parses a single trending page. Timeouts surface as
// context.DeadlineExceeded (via errors.Is), bad statuses as *StatusError, so
// callers can branch on the failure kind. A successful fetch that extracts
// zero repositories is not an error here; callers that treat an empty page
// as a failure check len() themselves.
func (c *Client) FetchOne(ctx context.Context, language string, period trending.Period) ([]trending.Repository, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(language, period), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", trending.Key(language, period), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	repos, err := trending.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", trending.Key(language, period), err)
	}

	if c.Sink != nil && len(repos) > 0 {
		c.Sink.Set(language, period, repos, 0)
	}
	return repos, nil
}
