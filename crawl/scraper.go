package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/wordcrawl"
)

var _ wordcrawl.Scraper = (*Scraper)(nil)

// Scraper runs fetched pages through the dedup, trap and quality filters,
// records corpus statistics for the pages that survive, and returns their
// admissible outbound links. It is safe for concurrent use.
type Scraper struct {
	parser       wordcrawl.PageParser
	policy       *wordcrawl.Policy
	minWords     int
	maxBodyBytes int64
	stopwords    map[string]struct{}
	parentDomain string
	logger       *slog.Logger
	now          func() time.Time

	mu     sync.Mutex
	corpus *corpus
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithMinWords sets the minimum token count for a page to be counted.
func WithMinWords(n int) ScraperOption {
	return func(s *Scraper) {
		s.minWords = n
	}
}

// WithMaxBodyBytes sets the largest body, in bytes, that is counted.
func WithMaxBodyBytes(n int64) ScraperOption {
	return func(s *Scraper) {
		s.maxBodyBytes = n
	}
}

// WithStopwords replaces the words excluded from the frequency table.
func WithStopwords(words []string) ScraperOption {
	return func(s *Scraper) {
		s.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			s.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithParentDomain sets the domain whose subdomains are tallied.
// An empty domain disables the tally.
func WithParentDomain(domain string) ScraperOption {
	return func(s *Scraper) {
		s.parentDomain = strings.ToLower(domain)
	}
}

// WithScraperLogger sets the logger for rejected pages and recovered panics.
func WithScraperLogger(logger *slog.Logger) ScraperOption {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// NewScraper creates a Scraper with default thresholds and stopwords.
func NewScraper(parser wordcrawl.PageParser, policy *wordcrawl.Policy, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		parser:       parser,
		policy:       policy,
		minWords:     wordcrawl.DefaultMinWords,
		maxBodyBytes: wordcrawl.DefaultMaxBodyBytes,
		parentDomain: wordcrawl.DefaultParentDomain,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		corpus:       newCorpus(),
	}
	WithStopwords(wordcrawl.DefaultStopwords)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process returns the admissible links of the page at rawURL. A page that is
// unsuccessful, already seen, a trap, a content duplicate or low value yields
// no links. Process never panics.
func (s *Scraper) Process(ctx context.Context, rawURL string, resp *wordcrawl.Response) (links []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scraper panic", "url", rawURL, "panic", r)
			links = nil
		}
	}()

	if !resp.OK() {
		return nil
	}

	normalized, err := wordcrawl.Normalize(rawURL)
	if err != nil {
		s.logger.Debug("skipping page", "url", rawURL, "err", err)
		return nil
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return nil
	}
	key := wordcrawl.CanonicalKey(u)
	trap := s.policy.IsTrap(normalized)

	s.mu.Lock()
	verdict := s.corpus.claim(normalized, key, trap)
	s.mu.Unlock()
	if verdict != accepted {
		s.logger.Debug("page rejected", "url", normalized, "reason", verdict.String())
		return nil
	}

	if err := ctx.Err(); err != nil {
		return nil
	}

	base := normalized
	if resp.URL != "" {
		base = resp.URL
	}
	page, err := s.parser.Parse(resp.Body, resp.ContentType(), base)
	if err != nil {
		s.logger.Warn("parse failed", "url", normalized, "err", err)
		return nil
	}

	tokens := wordcrawl.Tokenize(page.Text)
	fingerprint := xxhash.Sum64String(strings.Join(tokens, " "))

	s.mu.Lock()
	verdict = s.corpus.admitContent(fingerprint, len(tokens), s.minWords, int64(len(resp.Body)), s.maxBodyBytes)
	if verdict == accepted {
		s.corpus.record(wordcrawl.PageRecord{
			URL:         normalized,
			WordCount:   len(tokens),
			ContentHash: fingerprint,
		}, tokens, s.stopwords, s.subdomainOf(u))
	}
	s.mu.Unlock()
	if verdict != accepted {
		s.logger.Debug("page rejected", "url", normalized, "reason", verdict.String(), "words", len(tokens))
		return nil
	}

	return s.candidates(page.Links)
}

// candidates strips fragments, drops traps and inadmissible URLs, and
// removes duplicates while keeping document order.
func (s *Scraper) candidates(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, link := range raw {
		normalized, err := wordcrawl.Normalize(link)
		if err != nil {
			s.logger.Debug("dropping link", "url", link, "err", err)
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		if s.policy.IsTrap(normalized) {
			continue
		}
		if err := s.policy.Admit(normalized); err != nil {
			s.logger.Debug("dropping link", "url", normalized, "err", err)
			continue
		}
		out = append(out, normalized)
	}
	return out
}

func (s *Scraper) subdomainOf(u *url.URL) string {
	if s.parentDomain == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if !wordcrawl.IsSubdomain(host, s.parentDomain) {
		return ""
	}
	return host
}

// Report snapshots the statistics gathered so far, keeping the topN most
// frequent words.
func (s *Scraper) Report(runID string, topN int) *wordcrawl.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.corpus.report(topN)
	r.RunID = runID
	r.GeneratedAt = s.now().UTC()
	return r
}
