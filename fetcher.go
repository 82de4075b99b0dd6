package wordcrawl

import (
	"context"
	"net/http"
)

// StatusFetchError is the status reported when no HTTP response was
// received (timeout, DNS or connection failure). It lies outside the HTTP
// range so it cannot be confused with a server error.
const StatusFetchError = 600

// Response is the outcome of a fetch.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Error      string
}

// OK reports whether the response carries a success status and a body.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300 && len(r.Body) > 0
}

// ContentType returns the Content-Type header, if any.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Fetcher retrieves pages.
type Fetcher interface {
	// Fetch retrieves url. Ordinary network failures do not produce a Go
	// error; they are reported through the response status so callers can
	// treat every outcome uniformly. The context controls cancellation.
	Fetch(ctx context.Context, url string) *Response
}
