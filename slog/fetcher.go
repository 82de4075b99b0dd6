// Package slog provides logging decorators for the crawl collaborators.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wordcrawl"
)

// Ensure LoggingFetcher implements wordcrawl.Fetcher.
var _ wordcrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   wordcrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next wordcrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
// Failed fetches are logged at warn level.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *wordcrawl.Response) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		attrs := []any{
			"url", url,
			"status", resp.StatusCode,
			"bytes", len(resp.Body),
			"duration", time.Since(begin),
		}
		if resp.Error != "" {
			level = slog.LevelWarn
			attrs = append(attrs, "err", resp.Error)
		}
		f.logger.Log(ctx, level, "fetch", attrs...)
	}(time.Now())
	resp = f.next.Fetch(ctx, url)
	if resp == nil {
		resp = &wordcrawl.Response{URL: url, StatusCode: wordcrawl.StatusFetchError, Error: "no response"}
	}
	return resp
}
