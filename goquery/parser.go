// Package goquery extracts visible text and links from HTML pages using
// goquery.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wordcrawl"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Compile-time interface verification.
var _ wordcrawl.PageParser = (*Parser)(nil)

// nonContentSelector matches elements whose text is never shown to readers.
const nonContentSelector = "script, style, noscript, template"

// Parser implements wordcrawl.PageParser.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes body to UTF-8 using the charset in contentType (or sniffed
// from the document), removes non-content elements, and returns the body
// text and every resolvable link in document order.
func (p *Parser) Parse(body []byte, contentType string, baseURL string) (*wordcrawl.ParsedPage, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, wordcrawl.Errorf(wordcrawl.EINVALID, "invalid base URL: %v", err)
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, wordcrawl.Errorf(wordcrawl.EINVALID, "failed to decode body: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, wordcrawl.Errorf(wordcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	doc.Find(nonContentSelector).Remove()

	content := doc.Find("body")
	if content.Length() == 0 {
		content = doc.Selection
	}

	return &wordcrawl.ParsedPage{
		Text:  visibleText(content),
		Links: extractLinks(doc, base),
	}, nil
}

// visibleText joins every text node under sel with single spaces, so
// adjacent block elements never run their words together.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func extractLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	doc.Find("a[href], area[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}
		if resolved := resolveURL(base, href); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveURL resolves href against base and strips the fragment.
// Returns empty string if the href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
