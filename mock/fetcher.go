package mock

import (
	"context"

	"github.com/fwojciec/wordcrawl"
)

var _ wordcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of wordcrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) *wordcrawl.Response
}

func (f *Fetcher) Fetch(ctx context.Context, url string) *wordcrawl.Response {
	return f.FetchFn(ctx, url)
}
