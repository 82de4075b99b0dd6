// Package crawl provides the crawl core: a persisted, polite URL frontier,
// the scraper pipeline that filters pages and gathers corpus statistics, and
// the worker loop that connects them to a fetcher.
//
// Only the frontier is durable. The scraper's dedup sets and statistics live
// in memory for one process; after a restart they start empty, so a resumed
// crawl reports statistics for the pages processed since it resumed.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/wordcrawl"
	"golang.org/x/sync/errgroup"
)

// Crawler drives workers that take URLs from the frontier, fetch them, feed
// them through the scraper, and add the resulting links back.
type Crawler struct {
	Frontier wordcrawl.Frontier
	Fetcher  wordcrawl.Fetcher
	Scraper  wordcrawl.Scraper
	Logger   *slog.Logger
	Progress ProgressFunc

	// Workers is the number of concurrent worker loops. Values below 1 mean 1.
	Workers int

	// Delay is an extra pause after each iteration of a worker.
	Delay time.Duration

	// MaxPages stops the run after this many URLs are taken from the
	// frontier. Zero means no limit.
	MaxPages int
}

// Result holds the outcome of a crawl run.
type Result struct {
	Processed  int
	Failed     int
	Discovered int
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type   ProgressType
	Worker int
	URL    string
	Status int
	Links  int
	Error  error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressCompleted ProgressType = iota
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
// It may be called concurrently from several workers.
type ProgressFunc func(event ProgressEvent)

type counters struct {
	processed  atomic.Int64
	failed     atomic.Int64
	discovered atomic.Int64
	taken      atomic.Int64
}

// Run crawls until the frontier is exhausted, ctx is cancelled, or a
// persistence error occurs. Cancellation is cooperative: iterations already
// in progress finish, including their frontier writes, before Run returns.
// Persistence errors abort the run and are returned.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	workers := max(c.Workers, 1)
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var n counters
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			return c.work(gctx, i, logger, &n)
		})
	}
	err := g.Wait()

	result := &Result{
		Processed:  int(n.processed.Load()),
		Failed:     int(n.failed.Load()),
		Discovered: int(n.discovered.Load()),
	}
	c.emit(ProgressEvent{Type: ProgressFinished, Error: err})
	return result, err
}

func (c *Crawler) work(ctx context.Context, worker int, logger *slog.Logger, n *counters) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.MaxPages > 0 && n.taken.Add(1) > int64(c.MaxPages) {
			return nil
		}

		url, ok, err := c.Frontier.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next URL: %w", err)
		}
		if !ok {
			logger.Debug("frontier exhausted", "worker", worker)
			return nil
		}

		if err := c.visit(context.WithoutCancel(ctx), worker, url, logger, n); err != nil {
			return err
		}

		if c.Delay > 0 {
			_ = sleep(ctx, c.Delay)
		}
	}
}

// visit handles one URL. Every URL is completed exactly once, after its
// links have been added, whatever the fetch outcome.
func (c *Crawler) visit(ctx context.Context, worker int, url string, logger *slog.Logger, n *counters) error {
	resp := c.Fetcher.Fetch(ctx, url)
	if !resp.OK() {
		n.failed.Add(1)
		status, reason := 0, ""
		if resp != nil {
			status, reason = resp.StatusCode, resp.Error
		}
		logger.Warn("skipping page", "worker", worker, "url", url, "status", status, "reason", reason)
		if err := c.Frontier.Complete(ctx, url); err != nil {
			return fmt.Errorf("complete %s: %w", url, err)
		}
		c.emit(ProgressEvent{Type: ProgressFailed, Worker: worker, URL: url, Status: status})
		return nil
	}

	links := c.Scraper.Process(ctx, url, resp)
	added := 0
	for _, link := range links {
		ok, err := c.Frontier.Add(ctx, link)
		if err != nil {
			return fmt.Errorf("add %s: %w", link, err)
		}
		if ok {
			added++
		}
	}

	if err := c.Frontier.Complete(ctx, url); err != nil {
		return fmt.Errorf("complete %s: %w", url, err)
	}

	n.processed.Add(1)
	n.discovered.Add(int64(added))
	logger.Debug("page processed", "worker", worker, "url", url, "links", len(links), "new", added)
	c.emit(ProgressEvent{Type: ProgressCompleted, Worker: worker, URL: url, Status: resp.StatusCode, Links: added})
	return nil
}

func (c *Crawler) emit(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}
