package crawl

import (
	"cmp"
	"maps"
	"slices"

	"github.com/fwojciec/wordcrawl"
)

// rejection names the pipeline stage that stopped a page.
type rejection int

const (
	accepted rejection = iota
	rejectedDuplicateURL
	rejectedDuplicateKey
	rejectedTrap
	rejectedDuplicateContent
	rejectedLowValue
)

func (r rejection) String() string {
	switch r {
	case accepted:
		return "accepted"
	case rejectedDuplicateURL:
		return "duplicate URL"
	case rejectedDuplicateKey:
		return "duplicate canonical key"
	case rejectedTrap:
		return "trap"
	case rejectedDuplicateContent:
		return "duplicate content"
	case rejectedLowValue:
		return "low value"
	default:
		return "unknown"
	}
}

// corpus is the dedup and statistics state of one Scraper.
// It is not safe for concurrent use; the Scraper guards it.
type corpus struct {
	visited      map[string]struct{}
	canonical    map[string]struct{}
	fingerprints map[uint64]string
	pages        []wordcrawl.PageRecord
	words        map[string]int
	subdomains   map[string]map[string]struct{}

	duplicates int
	traps      int
	lowValue   int
}

func newCorpus() *corpus {
	return &corpus{
		visited:      make(map[string]struct{}),
		canonical:    make(map[string]struct{}),
		fingerprints: make(map[uint64]string),
		words:        make(map[string]int),
		subdomains:   make(map[string]map[string]struct{}),
	}
}

// claim runs the URL-level stages: exact dedup, canonical-key dedup and the
// trap denylist. A URL that passes exact dedup is remembered even when a
// later stage rejects it.
func (c *corpus) claim(url, key string, trap bool) rejection {
	if _, ok := c.visited[url]; ok {
		c.duplicates++
		return rejectedDuplicateURL
	}
	c.visited[url] = struct{}{}

	if _, ok := c.canonical[key]; ok {
		c.duplicates++
		return rejectedDuplicateKey
	}
	c.canonical[key] = struct{}{}

	if trap {
		c.traps++
		return rejectedTrap
	}
	return accepted
}

// admitContent runs the content-level stages: fingerprint dedup and the
// low-value filters.
func (c *corpus) admitContent(fingerprint uint64, tokens, minWords int, bodyBytes, maxBodyBytes int64) rejection {
	if _, ok := c.fingerprints[fingerprint]; ok {
		c.duplicates++
		return rejectedDuplicateContent
	}
	if tokens < minWords || bodyBytes > maxBodyBytes {
		c.lowValue++
		return rejectedLowValue
	}
	return accepted
}

// record adds a page to the statistics. subdomain is empty when the page
// lies outside the parent domain.
func (c *corpus) record(page wordcrawl.PageRecord, tokens []string, stopwords map[string]struct{}, subdomain string) {
	c.fingerprints[page.ContentHash] = page.URL
	c.pages = append(c.pages, page)

	for _, w := range tokens {
		if _, stop := stopwords[w]; stop {
			continue
		}
		c.words[w]++
	}

	if subdomain != "" {
		set, ok := c.subdomains[subdomain]
		if !ok {
			set = make(map[string]struct{})
			c.subdomains[subdomain] = set
		}
		set[page.URL] = struct{}{}
	}
}

// report snapshots the statistics. topN <= 0 returns every word.
func (c *corpus) report(topN int) *wordcrawl.Report {
	r := &wordcrawl.Report{
		UniqueURLs:     slices.Sorted(maps.Keys(c.visited)),
		PageWordCounts: make(map[string]int, len(c.pages)),
		Pages:          len(c.pages),
		Duplicates:     c.duplicates,
		Traps:          c.traps,
		LowValue:       c.lowValue,
	}

	for _, p := range c.pages {
		r.PageWordCounts[p.URL] = p.WordCount
		if p.WordCount > r.LongestPage.WordCount {
			r.LongestPage = p
		}
	}

	top := make([]wordcrawl.WordCount, 0, len(c.words))
	for w, n := range c.words {
		top = append(top, wordcrawl.WordCount{Word: w, Count: n})
	}
	slices.SortFunc(top, func(a, b wordcrawl.WordCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}
	r.TopWords = top

	r.Subdomains = make([]wordcrawl.SubdomainCount, 0, len(c.subdomains))
	for _, name := range slices.Sorted(maps.Keys(c.subdomains)) {
		r.Subdomains = append(r.Subdomains, wordcrawl.SubdomainCount{
			Subdomain: name,
			Pages:     len(c.subdomains[name]),
		})
	}

	return r
}
