package wordcrawl

import (
	"context"
	"time"
)

// Entry is the persisted record for one normalized URL.
// Completed only ever moves from false to true.
type Entry struct {
	Hash      string
	URL       string
	Completed bool
}

// Store is the durable map behind the frontier, keyed by URL hash.
type Store interface {
	// Get returns the entry stored under hash.
	// Returns ENOTFOUND if no entry exists.
	Get(ctx context.Context, hash string) (*Entry, error)

	// Put writes the entry. The write is durable when Put returns.
	// A completed entry is never reverted to pending.
	Put(ctx context.Context, entry *Entry) error

	// Iterate calls fn for every stored entry. Iteration stops at the
	// first error returned by fn.
	Iterate(ctx context.Context, fn func(*Entry) error) error

	// Flush forces buffered state (e.g. a write-ahead log) into the main file.
	Flush(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// Frontier is the durable work queue of discovered-but-unprocessed URLs.
type Frontier interface {
	// Add enqueues a URL unless its normalized form was seen before.
	// Returns false for duplicates.
	Add(ctx context.Context, rawURL string) (bool, error)

	// Next returns the next URL once the politeness window for its host
	// has elapsed. The bool result is false when the frontier is exhausted.
	Next(ctx context.Context) (string, bool, error)

	// Complete marks a URL as processed so it is never handed out again,
	// including after a restart.
	Complete(ctx context.Context, url string) error

	// Len returns the number of URLs waiting in the queue.
	Len() int
}

// DomainLimiter spaces out requests to the same host.
type DomainLimiter interface {
	// Reserve claims the next access slot for domain and returns how long
	// the caller must wait before using it. It never blocks.
	Reserve(domain string) time.Duration
}

// DomainState records when a host was last (or will next be) accessed.
type DomainState struct {
	Domain     string
	LastAccess time.Time
}
