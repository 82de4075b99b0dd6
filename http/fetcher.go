// Package http provides an HTTP-based implementation of wordcrawl.Fetcher.
package http

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/wordcrawl"
)

// DefaultFetchTimeout bounds a whole request, including reading the body.
const DefaultFetchTimeout = wordcrawl.DefaultFetchTimeout

// Ensure Fetcher implements wordcrawl.Fetcher at compile time.
var _ wordcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages with plain HTTP GET requests.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps how much of a body is kept. One byte more than the
// cap is read so callers can tell an oversized page from one that fits.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithClient replaces the HTTP client. Its timeout is overridden by
// WithTimeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    wordcrawl.DefaultUserAgent,
		maxBodyBytes: wordcrawl.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	client := &http.Client{}
	if f.client != nil {
		c := *f.client
		client = &c
	}
	client.Timeout = f.timeout
	f.client = client

	return f
}

// Fetch retrieves url. Transport failures, timeouts and unreadable bodies
// are reported as a response with wordcrawl.StatusFetchError and the cause
// in Error; HTTP error statuses are returned as received.
func (f *Fetcher) Fetch(ctx context.Context, url string) *wordcrawl.Response {
	out := &wordcrawl.Response{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed(out, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	// Setting Accept-Encoding disables the transport's transparent gzip
	// handling, so every encoding is decoded in readBody.
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return failed(out, err)
	}
	defer resp.Body.Close()

	if resp.Request != nil && resp.Request.URL != nil {
		out.URL = resp.Request.URL.String()
	}
	out.StatusCode = resp.StatusCode
	out.Header = resp.Header.Clone()
	out.Header.Del("Content-Encoding")
	out.Header.Del("Content-Length")

	body, err := f.readBody(resp)
	if err != nil {
		return failed(out, err)
	}
	out.Body = body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Error = fmt.Sprintf("HTTP %d for %s", resp.StatusCode, url)
	}
	return out
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "", "identity":
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}

	if f.maxBodyBytes > 0 {
		reader = io.LimitReader(reader, f.maxBodyBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func failed(out *wordcrawl.Response, err error) *wordcrawl.Response {
	out.StatusCode = wordcrawl.StatusFetchError
	out.Body = nil
	out.Error = err.Error()
	return out
}
