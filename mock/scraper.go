package mock

import (
	"context"

	"github.com/fwojciec/wordcrawl"
)

var _ wordcrawl.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of wordcrawl.PageParser.
type PageParser struct {
	ParseFn func(body []byte, contentType string, baseURL string) (*wordcrawl.ParsedPage, error)
}

func (p *PageParser) Parse(body []byte, contentType string, baseURL string) (*wordcrawl.ParsedPage, error) {
	return p.ParseFn(body, contentType, baseURL)
}

var _ wordcrawl.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of wordcrawl.Scraper.
type Scraper struct {
	ProcessFn func(ctx context.Context, url string, resp *wordcrawl.Response) []string
}

func (s *Scraper) Process(ctx context.Context, url string, resp *wordcrawl.Response) []string {
	return s.ProcessFn(ctx, url, resp)
}

var _ wordcrawl.ReportWriter = (*ReportWriter)(nil)

// ReportWriter is a mock implementation of wordcrawl.ReportWriter.
type ReportWriter struct {
	WriteReportFn func(ctx context.Context, report *wordcrawl.Report) error
}

func (w *ReportWriter) WriteReport(ctx context.Context, report *wordcrawl.Report) error {
	return w.WriteReportFn(ctx, report)
}
