package wordcrawl

import (
	"context"
	"time"
)

// ParsedPage is the visible text and outbound links of an HTML page.
type ParsedPage struct {
	// Text is the visible text with script, style and similar nodes removed.
	Text string

	// Links are absolute, fragment-free URLs in document order.
	// They may contain duplicates.
	Links []string
}

// PageParser extracts visible text and links from a fetched page.
type PageParser interface {
	// Parse decodes body using the content type's charset and resolves
	// links against baseURL.
	Parse(body []byte, contentType string, baseURL string) (*ParsedPage, error)
}

// Scraper turns fetched pages into candidate links while accumulating
// corpus statistics.
type Scraper interface {
	// Process returns the admissible links found on the page.
	// It never fails: every internal problem yields no links.
	Process(ctx context.Context, url string, resp *Response) []string
}

// PageRecord is created once for every page counted in the statistics.
type PageRecord struct {
	URL         string `json:"url"`
	WordCount   int    `json:"wordCount"`
	ContentHash uint64 `json:"contentHash"`
}

// WordCount is an entry of the global word-frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SubdomainCount is the number of distinct pages seen on a subdomain.
type SubdomainCount struct {
	Subdomain string `json:"subdomain"`
	Pages     int    `json:"pages"`
}

// Report is a snapshot of the corpus statistics of one crawl run.
type Report struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`

	UniqueURLs     []string         `json:"uniqueUrls"`
	PageWordCounts map[string]int   `json:"pageWordCounts"`
	LongestPage    PageRecord       `json:"longestPage"`
	TopWords       []WordCount      `json:"topWords"`
	Subdomains     []SubdomainCount `json:"subdomains"`

	// Pages is the number of pages that contributed to the statistics.
	Pages int `json:"pages"`
	// Duplicates counts pages rejected by URL, canonical key or content fingerprint.
	Duplicates int `json:"duplicates"`
	// Traps counts pages rejected by the trap denylist.
	Traps int `json:"traps"`
	// LowValue counts pages rejected for being too short or too large.
	LowValue int `json:"lowValue"`
}

// ReportWriter exports a report.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *Report) error
}
