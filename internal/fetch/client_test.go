package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ghtrend/internal/trending"
)

// pageFor fabricates a minimal trending page whose single entry is named
// after the requested language, so tests can tell responses apart.
func pageFor(lang string) string {
	if lang == "" {
		lang = "all"
	}
	return `<article class="Box-row"><h2><a href="/o/` + lang + `">o / ` + lang + `</a></h2>` +
		`<span class="d-inline-block float-sm-right">42 stars today</span></article>`
}

func langFromPath(path string) string {
	return strings.TrimPrefix(strings.TrimPrefix(path, "/trending"), "/")
}

type recordingSink struct {
	calls []string
}

func (s *recordingSink) Set(language string, period trending.Period, data []trending.Repository, ttl time.Duration) {
	s.calls = append(s.calls, trending.Key(language, period))
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(nil)
	c.BaseURL = srv.URL
	return c
}

func TestFetchOne(t *testing.T) {
	var gotPath, gotUA, gotAccept, gotSince string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotSince = r.URL.Query().Get("since")
		fmt.Fprint(w, pageFor("Go"))
	})
	sink := &recordingSink{}
	c.Sink = sink

	repos, err := c.FetchOne(context.Background(), "Go", trending.PeriodDaily)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "Go" {
		t.Errorf("unexpected repos: %+v", repos)
	}
	if gotPath != "/trending/Go" {
		t.Errorf("expected /trending/Go, got %s", gotPath)
	}
	if gotSince != "daily" {
		t.Errorf("expected since=daily, got %s", gotSince)
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("expected a browser User-Agent, got %q", gotUA)
	}
	if gotAccept != "text/html" {
		t.Errorf("expected Accept: text/html, got %q", gotAccept)
	}
	if len(sink.calls) != 1 || sink.calls[0] != "Go-daily" {
		t.Errorf("expected one sink call for Go-daily, got %v", sink.calls)
	}
}

func TestFetchOneOverallFeed(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, pageFor(""))
	})

	if _, err := c.FetchOne(context.Background(), "", trending.PeriodWeekly); err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if gotPath != "/trending" {
		t.Errorf("expected bare /trending for the overall feed, got %s", gotPath)
	}
}

func TestPageURLEscapesLanguage(t *testing.T) {
	c := NewClient(nil)
	c.BaseURL = "https://github.com"

	got := c.PageURL("C#", trending.PeriodMonthly)
	want := "https://github.com/trending/C%23?since=monthly"
	if got != want {
		t.Errorf("PageURL = %q, want %q", got, want)
	}
}

func TestFetchOneBadStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.FetchOne(context.Background(), "Go", trending.PeriodDaily)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", statusErr.Code)
	}
}

func TestFetchOneTimeout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})
	c.Timeout = 50 * time.Millisecond

	_, err := c.FetchOne(context.Background(), "Go", trending.PeriodDaily)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestFetchOneEmptyPageSkipsSink(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing trending</body></html>")
	})
	sink := &recordingSink{}
	c.Sink = sink

	repos, err := c.FetchOne(context.Background(), "Go", trending.PeriodDaily)
	if err != nil {
		t.Fatalf("an empty page is not a transport error: %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("expected 0 repos, got %d", len(repos))
	}
	if len(sink.calls) != 0 {
		t.Errorf("expected no sink call for an empty result, got %v", sink.calls)
	}
}
