package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/bloom"
	"github.com/fwojciec/wordcrawl/crawl"
	"github.com/fwojciec/wordcrawl/goquery"
	"github.com/fwojciec/wordcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueFrontier is a mock frontier over a fixed list that records calls.
func queueFrontier(urls ...string) (*mock.Frontier, *[]string) {
	var mu sync.Mutex
	var calls []string
	queue := append([]string(nil), urls...)
	record := func(call string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, call)
	}
	f := &mock.Frontier{
		NextFn: func(ctx context.Context) (string, bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(queue) == 0 {
				return "", false, nil
			}
			url := queue[0]
			queue = queue[1:]
			return url, true, nil
		},
		AddFn: func(_ context.Context, url string) (bool, error) {
			record("add " + url)
			return true, nil
		},
		CompleteFn: func(_ context.Context, url string) error {
			record("complete " + url)
			return nil
		},
	}
	return f, &calls
}

func TestCrawler_Run_completes_every_URL_after_adding_its_links(t *testing.T) {
	t.Parallel()

	frontier, calls := queueFrontier("https://www.ics.uci.edu/ok", "https://www.ics.uci.edu/broken")
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
				if url == "https://www.ics.uci.edu/broken" {
					return &wordcrawl.Response{URL: url, StatusCode: wordcrawl.StatusFetchError, Error: "timeout"}
				}
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusOK, Body: []byte("<html></html>")}
			},
		},
		Scraper: &mock.Scraper{
			ProcessFn: func(_ context.Context, url string, _ *wordcrawl.Response) []string {
				return []string{url + "/a", url + "/b"}
			},
		},
	}

	result, err := c.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &crawl.Result{Processed: 1, Failed: 1, Discovered: 2}, result)
	assert.Equal(t, []string{
		"add https://www.ics.uci.edu/ok/a",
		"add https://www.ics.uci.edu/ok/b",
		"complete https://www.ics.uci.edu/ok",
		"complete https://www.ics.uci.edu/broken",
	}, *calls)
}

func TestCrawler_Run_does_not_scrape_failed_fetches(t *testing.T) {
	t.Parallel()

	frontier, _ := queueFrontier("https://www.ics.uci.edu/missing")
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusNotFound, Body: []byte("not found")}
			},
		},
		Scraper: &mock.Scraper{
			ProcessFn: func(context.Context, string, *wordcrawl.Response) []string {
				t.Fatal("scraper must not see failed fetches")
				return nil
			},
		},
	}

	result, err := c.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestCrawler_Run_aborts_on_persistence_error(t *testing.T) {
	t.Parallel()

	diskErr := errors.New("disk I/O error")
	frontier, _ := queueFrontier("https://www.ics.uci.edu/1", "https://www.ics.uci.edu/2")
	frontier.CompleteFn = func(context.Context, string) error { return diskErr }

	fetched := 0
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
				fetched++
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusOK, Body: []byte("x")}
			},
		},
		Scraper: &mock.Scraper{
			ProcessFn: func(context.Context, string, *wordcrawl.Response) []string { return nil },
		},
	}

	_, err := c.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.Equal(t, 1, fetched, "no further URL is fetched after a persistence error")
}

func TestCrawler_Run_aborts_on_add_error(t *testing.T) {
	t.Parallel()

	diskErr := errors.New("disk full")
	frontier, calls := queueFrontier("https://www.ics.uci.edu/")
	frontier.AddFn = func(context.Context, string) (bool, error) { return false, diskErr }

	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusOK, Body: []byte("x")}
			},
		},
		Scraper: &mock.Scraper{
			ProcessFn: func(context.Context, string, *wordcrawl.Response) []string {
				return []string{"https://www.ics.uci.edu/about"}
			},
		},
	}

	_, err := c.Run(context.Background())

	assert.ErrorIs(t, err, diskErr)
	assert.Empty(t, *calls, "a URL whose links were not recorded must not be completed")
}

func TestCrawler_Run_finishes_in_flight_iteration_on_cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frontier, calls := queueFrontier("https://www.ics.uci.edu/1", "https://www.ics.uci.edu/2")
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(fctx context.Context, url string) *wordcrawl.Response {
				cancel()
				assert.NoError(t, fctx.Err(), "in-flight fetch must not see the stop signal")
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusOK, Body: []byte("x")}
			},
		},
		Scraper: &mock.Scraper{
			ProcessFn: func(context.Context, string, *wordcrawl.Response) []string {
				return []string{"https://www.ics.uci.edu/new"}
			},
		},
	}

	result, err := c.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, []string{
		"add https://www.ics.uci.edu/new",
		"complete https://www.ics.uci.edu/1",
	}, *calls)
}

func TestCrawler_Run_stops_after_MaxPages(t *testing.T) {
	t.Parallel()

	frontier, _ := queueFrontier("https://a.ics.uci.edu/", "https://b.ics.uci.edu/", "https://c.ics.uci.edu/")
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusOK, Body: []byte("x")}
			},
		},
		Scraper:  &mock.Scraper{ProcessFn: func(context.Context, string, *wordcrawl.Response) []string { return nil }},
		MaxPages: 2,
	}

	result, err := c.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
}

func TestCrawler_Run_reports_progress(t *testing.T) {
	t.Parallel()

	frontier, _ := queueFrontier("https://www.ics.uci.edu/", "https://www.ics.uci.edu/gone")
	var mu sync.Mutex
	var events []crawl.ProgressEvent
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
				if url == "https://www.ics.uci.edu/gone" {
					return &wordcrawl.Response{URL: url, StatusCode: http.StatusGone}
				}
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusOK, Body: []byte("x")}
			},
		},
		Scraper: &mock.Scraper{ProcessFn: func(context.Context, string, *wordcrawl.Response) []string {
			return []string{"https://www.ics.uci.edu/a"}
		}},
		Progress: func(e crawl.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		},
	}

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, crawl.ProgressEvent{Type: crawl.ProgressCompleted, URL: "https://www.ics.uci.edu/", Status: 200, Links: 1}, events[0])
	assert.Equal(t, crawl.ProgressEvent{Type: crawl.ProgressFailed, URL: "https://www.ics.uci.edu/gone", Status: 410}, events[1])
	assert.Equal(t, crawl.ProgressFinished, events[2].Type)
}

// site is an in-memory web of HTML pages keyed by URL.
type site map[string]string

func (s site) fetcher(mu *sync.Mutex, fetched map[string]int) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) *wordcrawl.Response {
			mu.Lock()
			fetched[url]++
			mu.Unlock()
			body, ok := s[url]
			if !ok {
				return &wordcrawl.Response{URL: url, StatusCode: http.StatusNotFound}
			}
			return &wordcrawl.Response{
				URL:        url,
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"text/html"}},
				Body:       []byte(body),
			}
		},
	}
}

func page(title string, links ...string) string {
	body := "<html><body><h1>" + title + "</h1><p>" + words(title, 60) + "</p>"
	for _, l := range links {
		body += fmt.Sprintf(`<a href="%s">link</a>`, l)
	}
	return body + "</body></html>"
}

func TestCrawler_Run_crawls_site_with_real_components(t *testing.T) {
	t.Parallel()

	web := site{
		"https://www.ics.uci.edu/": page("home",
			"/about#team", "https://evil.com/x", "/people?b=2&a=1", "/people?a=1&b=2", "/slides.pdf", "/missing"),
		"https://www.ics.uci.edu/about":         page("about", "/", "https://vision.ics.uci.edu/"),
		"https://www.ics.uci.edu/people?b=2&a=1": page("people", "/events/2024-01-01/"),
		"https://www.ics.uci.edu/people?a=1&b=2": page("peoplecopy", "/never-reached"),
		"https://vision.ics.uci.edu/":            page("vision", "/about"),
		"https://vision.ics.uci.edu/about":       page("about", "/", "https://vision.ics.uci.edu/"),
	}

	policy := testPolicy(t, "ics.uci.edu")
	store := openStore(t, filepath.Join(t.TempDir(), "frontier.db"), false)
	frontier := crawl.NewFrontier(store, crawl.NewDomainLimiter(time.Millisecond),
		crawl.WithPolicy(policy), crawl.WithBloom(bloom.NewFilter(1000, 0.01)))
	require.NoError(t, frontier.Initialize(context.Background(), []string{"https://www.ics.uci.edu/"}, false))

	scraper := crawl.NewScraper(goquery.NewParser(), policy)
	var mu sync.Mutex
	fetched := make(map[string]int)
	c := &crawl.Crawler{
		Frontier: frontier,
		Fetcher:  web.fetcher(&mu, fetched),
		Scraper:  scraper,
		Workers:  3,
	}

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"https://www.ics.uci.edu/":                1,
		"https://www.ics.uci.edu/about":           1,
		"https://www.ics.uci.edu/people?b=2&a=1":  1,
		"https://www.ics.uci.edu/people?a=1&b=2":  1,
		"https://www.ics.uci.edu/missing":         1,
		"https://vision.ics.uci.edu/":             1,
		"https://vision.ics.uci.edu/about":        1,
	}, fetched)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 6, result.Processed)

	report := scraper.Report("run", 0)
	// The second people URL shares a canonical key with the first; the
	// vision about page duplicates the www one.
	assert.Equal(t, 4, report.Pages)
	assert.Equal(t, 2, report.Duplicates)
	assert.Equal(t, []wordcrawl.SubdomainCount{
		{Subdomain: "vision.ics.uci.edu", Pages: 1},
		{Subdomain: "www.ics.uci.edu", Pages: 3},
	}, report.Subdomains)
	assert.Equal(t, 0, frontier.Len())
	assert.Equal(t, 0, frontier.Pending())
}
