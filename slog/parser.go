package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/wordcrawl"
)

// Ensure LoggingParser implements wordcrawl.PageParser.
var _ wordcrawl.PageParser = (*LoggingParser)(nil)

// LoggingParser wraps a PageParser with debug logging.
type LoggingParser struct {
	next   wordcrawl.PageParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next wordcrawl.PageParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the operation.
func (p *LoggingParser) Parse(body []byte, contentType string, baseURL string) (page *wordcrawl.ParsedPage, err error) {
	defer func(begin time.Time) {
		links := 0
		if page != nil {
			links = len(page.Links)
		}
		p.logger.Debug("parse",
			"url", baseURL,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(body, contentType, baseURL)
}
