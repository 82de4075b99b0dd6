package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/bloom"
	"github.com/fwojciec/wordcrawl/crawl"
	"github.com/fwojciec/wordcrawl/fs"
	"github.com/fwojciec/wordcrawl/goquery"
	wordcrawlhttp "github.com/fwojciec/wordcrawl/http"
	"github.com/fwojciec/wordcrawl/markdown"
	wcslog "github.com/fwojciec/wordcrawl/slog"
	"github.com/fwojciec/wordcrawl/sqlite"
	"github.com/google/uuid"
)

// progressURLWidth is the URL column width of progress lines.
const progressURLWidth = 80

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}

	path, err := c.storePath(cfg)
	if err != nil {
		return err
	}

	db := sqlite.NewDB(path)
	db.Fresh = c.Restart
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to open frontier database at %q: %w", path, err)
	}
	store := sqlite.NewEntryStore(db)
	defer store.Close()

	runID := uuid.NewString()
	logger := deps.Logger.With("run", runID)

	frontier := crawl.NewFrontier(store, crawl.NewDomainLimiter(cfg.PolitenessWindow),
		crawl.WithPolicy(policy),
		crawl.WithBloom(bloom.NewFilter(cfg.BloomExpectedURLs, cfg.BloomFPRate)),
		crawl.WithFrontierLogger(logger),
	)
	if err := frontier.Initialize(deps.Ctx, cfg.SeedURLs, c.Restart); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}
	logger.Info("frontier ready", "store", path, "pending", frontier.Len(), "restart", c.Restart)

	fetcher := deps.Fetcher
	if fetcher == nil {
		fetcher = wordcrawlhttp.NewFetcher(
			wordcrawlhttp.WithTimeout(cfg.FetchTimeout),
			wordcrawlhttp.WithUserAgent(cfg.UserAgent),
			wordcrawlhttp.WithMaxBodyBytes(cfg.MaxBodyBytes),
		)
	}

	scraper := crawl.NewScraper(wcslog.NewLoggingParser(goquery.NewParser(), logger), policy,
		crawl.WithMinWords(cfg.MinWords),
		crawl.WithMaxBodyBytes(cfg.MaxBodyBytes),
		crawl.WithStopwords(cfg.Stopwords),
		crawl.WithParentDomain(cfg.ParentDomain),
		crawl.WithScraperLogger(logger),
	)

	reports := wcslog.NewLoggingReportWriter(
		fs.NewReportWriter(cfg.ReportDir, reportDirectory, fs.WithFile(markdown.ReportFile, markdown.Render)),
		logger,
	)

	out := &syncWriter{w: deps.Stdout}
	crawler := &crawl.Crawler{
		Frontier: frontier,
		Fetcher:  wcslog.NewLoggingFetcher(fetcher, logger),
		Scraper:  scraper,
		Logger:   logger,
		Workers:  cfg.Workers,
		Delay:    cfg.RequestDelay,
		MaxPages: c.MaxPages,
	}
	if !c.Quiet {
		crawler.Progress = func(event crawl.ProgressEvent) {
			if event.Type == crawl.ProgressFinished {
				return
			}
			fmt.Fprintln(out, crawl.FormatProgress(event, progressURLWidth))
		}
	}

	snapshot := func(ctx context.Context) error {
		return reports.WriteReport(ctx, scraper.Report(runID, cfg.TopWords))
	}

	stopReports := startPeriodicReports(deps.Ctx, c.ReportInterval, snapshot)

	start := time.Now()
	result, runErr := crawler.Run(deps.Ctx)
	stopReports()

	// The run may have stopped on cancellation; persisting and reporting
	// must still complete.
	final := context.WithoutCancel(deps.Ctx)
	if err := store.Flush(final); err != nil && runErr == nil {
		runErr = fmt.Errorf("flush frontier: %w", err)
	}
	if err := snapshot(final); err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to write report: %v\n", err)
		if runErr == nil {
			runErr = err
		}
	}

	fmt.Fprintln(out, crawl.FormatResult(result, time.Since(start)))
	fmt.Fprintf(out, "Report written to %s\n", reportPath(cfg.ReportDir))

	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", runErr)
		return runErr
	}
	if deps.Ctx.Err() != nil {
		fmt.Fprintf(out, "Stopped early; %d URLs remain. Run 'wordcrawl crawl' to resume.\n", frontier.Len())
	}
	return nil
}

// config loads the configuration and applies the command-line overrides.
func (c *CrawlCmd) config() (wordcrawl.Config, error) {
	cfg, err := c.load()
	if err != nil {
		return cfg, err
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.ReportDir != "" {
		cfg.ReportDir = c.ReportDir
	}
	if c.MaxPages < 0 {
		return cfg, wordcrawl.Errorf(wordcrawl.EINVALID, "max pages must be non-negative")
	}
	if c.ReportInterval < 0 {
		return cfg, wordcrawl.Errorf(wordcrawl.EINVALID, "report interval must be non-negative")
	}
	return cfg, cfg.Validate()
}

// startPeriodicReports calls write every interval until the returned stop
// function is called. Stop waits for a write in progress.
func startPeriodicReports(ctx context.Context, interval time.Duration, write func(context.Context) error) (stop func()) {
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Failures are logged by the writer; the next tick retries.
				_ = write(ctx)
			}
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		wg.Wait()
	}
}

func reportPath(dir string) string {
	return filepath.Join(dir, reportDirectory)
}

// syncWriter serializes writes from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
