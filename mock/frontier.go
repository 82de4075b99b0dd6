package mock

import (
	"context"
	"time"

	"github.com/fwojciec/wordcrawl"
)

var _ wordcrawl.Store = (*Store)(nil)

// Store is a mock implementation of wordcrawl.Store.
type Store struct {
	GetFn     func(ctx context.Context, hash string) (*wordcrawl.Entry, error)
	PutFn     func(ctx context.Context, entry *wordcrawl.Entry) error
	IterateFn func(ctx context.Context, fn func(*wordcrawl.Entry) error) error
	FlushFn   func(ctx context.Context) error
	CloseFn   func() error
}

func (s *Store) Get(ctx context.Context, hash string) (*wordcrawl.Entry, error) {
	return s.GetFn(ctx, hash)
}

func (s *Store) Put(ctx context.Context, entry *wordcrawl.Entry) error {
	return s.PutFn(ctx, entry)
}

func (s *Store) Iterate(ctx context.Context, fn func(*wordcrawl.Entry) error) error {
	return s.IterateFn(ctx, fn)
}

func (s *Store) Flush(ctx context.Context) error {
	return s.FlushFn(ctx)
}

func (s *Store) Close() error {
	return s.CloseFn()
}

var _ wordcrawl.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of wordcrawl.Frontier.
type Frontier struct {
	AddFn      func(ctx context.Context, rawURL string) (bool, error)
	NextFn     func(ctx context.Context) (string, bool, error)
	CompleteFn func(ctx context.Context, url string) error
	LenFn      func() int
}

func (f *Frontier) Add(ctx context.Context, rawURL string) (bool, error) {
	return f.AddFn(ctx, rawURL)
}

func (f *Frontier) Next(ctx context.Context) (string, bool, error) {
	return f.NextFn(ctx)
}

func (f *Frontier) Complete(ctx context.Context, url string) error {
	return f.CompleteFn(ctx, url)
}

func (f *Frontier) Len() int {
	return f.LenFn()
}

var _ wordcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of wordcrawl.DomainLimiter.
type DomainLimiter struct {
	ReserveFn func(domain string) time.Duration
}

func (l *DomainLimiter) Reserve(domain string) time.Duration {
	return l.ReserveFn(domain)
}
