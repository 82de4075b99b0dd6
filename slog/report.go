package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wordcrawl"
)

// Ensure LoggingReportWriter implements wordcrawl.ReportWriter.
var _ wordcrawl.ReportWriter = (*LoggingReportWriter)(nil)

// LoggingReportWriter wraps a ReportWriter with logging.
type LoggingReportWriter struct {
	next   wordcrawl.ReportWriter
	logger *slog.Logger
}

// NewLoggingReportWriter creates a new LoggingReportWriter.
func NewLoggingReportWriter(next wordcrawl.ReportWriter, logger *slog.Logger) *LoggingReportWriter {
	return &LoggingReportWriter{next: next, logger: logger}
}

// WriteReport delegates to the wrapped writer and logs the operation.
func (w *LoggingReportWriter) WriteReport(ctx context.Context, report *wordcrawl.Report) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("report",
			"run", report.RunID,
			"pages", report.Pages,
			"urls", len(report.UniqueURLs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteReport(ctx, report)
}
