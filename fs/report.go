// Package fs writes crawl reports to the local file system.
package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/wordcrawl"
)

// Report file names.
const (
	UniqueURLsFile     = "unique_urls.txt"
	PageWordCountsFile = "page_word_count.json"
	SubdomainsFile     = "subdomain_and_page_count.json"
	TopWordsFile       = "top_words.txt"
	SummaryFile        = "summary.json"
)

// Ensure ReportWriter implements wordcrawl.ReportWriter at compile time.
var _ wordcrawl.ReportWriter = (*ReportWriter)(nil)

// RenderFunc writes one representation of a report.
type RenderFunc func(w io.Writer, report *wordcrawl.Report) error

// ReportWriter writes a report as a directory of files with atomic update
// semantics: files are written to baseDir/name.tmp, which then replaces
// baseDir/name. Readers never see a half-written report.
type ReportWriter struct {
	baseDir string
	name    string
	files   []reportFile

	mu sync.Mutex
}

type reportFile struct {
	name   string
	render RenderFunc
}

// Option configures a ReportWriter.
type Option func(*ReportWriter)

// WithFile adds a file rendered by render to every report.
func WithFile(name string, render RenderFunc) Option {
	return func(w *ReportWriter) {
		w.files = append(w.files, reportFile{name: name, render: render})
	}
}

// NewReportWriter creates a new ReportWriter.
// baseDir is the parent directory, name is the report directory name.
func NewReportWriter(baseDir, name string, opts ...Option) *ReportWriter {
	w := &ReportWriter{
		baseDir: baseDir,
		name:    name,
		files: []reportFile{
			{UniqueURLsFile, renderUniqueURLs},
			{PageWordCountsFile, renderPageWordCounts},
			{SubdomainsFile, renderSubdomains},
			{TopWordsFile, renderTopWords},
			{SummaryFile, renderSummary},
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the directory holding the latest committed report.
func (w *ReportWriter) Dir() string {
	return filepath.Join(w.baseDir, w.name)
}

func (w *ReportWriter) tempDir() string {
	return filepath.Join(w.baseDir, w.name+".tmp")
}

// WriteReport writes every report file and commits them together.
func (w *ReportWriter) WriteReport(ctx context.Context, report *wordcrawl.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tmp := w.tempDir()
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return err
	}

	for _, f := range w.files {
		if err := ctx.Err(); err != nil {
			_ = os.RemoveAll(tmp)
			return err
		}
		if err := writeFile(filepath.Join(tmp, f.name), report, f.render); err != nil {
			_ = os.RemoveAll(tmp)
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	return w.commit()
}

func (w *ReportWriter) commit() error {
	if err := os.RemoveAll(w.Dir()); err != nil {
		return err
	}
	return os.Rename(w.tempDir(), w.Dir())
}

func writeFile(path string, report *wordcrawl.Report, render RenderFunc) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := render(bw, report); err != nil {
		return err
	}
	return bw.Flush()
}

func renderUniqueURLs(w io.Writer, r *wordcrawl.Report) error {
	for _, u := range r.UniqueURLs {
		if _, err := fmt.Fprintln(w, u); err != nil {
			return err
		}
	}
	return nil
}

func renderTopWords(w io.Writer, r *wordcrawl.Report) error {
	for _, wc := range r.TopWords {
		if _, err := fmt.Fprintf(w, "%s %d\n", wc.Word, wc.Count); err != nil {
			return err
		}
	}
	return nil
}

func renderPageWordCounts(w io.Writer, r *wordcrawl.Report) error {
	counts := r.PageWordCounts
	if counts == nil {
		counts = map[string]int{}
	}
	return encodeJSON(w, counts)
}

// renderSubdomains writes subdomain page counts as one object keyed by
// subdomain, in name order.
func renderSubdomains(w io.Writer, r *wordcrawl.Report) error {
	counts := make(map[string]int, len(r.Subdomains))
	for _, s := range r.Subdomains {
		counts[s.Subdomain] = s.Pages
	}
	return encodeJSON(w, counts)
}

func renderSummary(w io.Writer, r *wordcrawl.Report) error {
	return encodeJSON(w, r)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
