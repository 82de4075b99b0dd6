package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/bloom"
)

// Compile-time interface verification.
var _ wordcrawl.Frontier = (*Frontier)(nil)

// Frontier is a persisted FIFO work queue with per-host politeness.
// Every URL ever added is recorded in the store, so a URL is handed out at
// most once across restarts unless the store is discarded.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	store   wordcrawl.Store
	limiter wordcrawl.DomainLimiter
	policy  *wordcrawl.Policy
	seen    *bloom.Filter
	logger  *slog.Logger

	mu     sync.Mutex
	queue  []string
	leased map[string]int
	notify chan struct{}
}

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithPolicy filters entries reloaded from the store through policy.
// Entries that are no longer admissible stay stored but are not queued.
func WithPolicy(policy *wordcrawl.Policy) FrontierOption {
	return func(f *Frontier) {
		f.policy = policy
	}
}

// WithBloom places a Bloom filter in front of store lookups.
func WithBloom(filter *bloom.Filter) FrontierOption {
	return func(f *Frontier) {
		f.seen = filter
	}
}

// WithFrontierLogger sets the logger for frontier warnings.
func WithFrontierLogger(logger *slog.Logger) FrontierOption {
	return func(f *Frontier) {
		f.logger = logger
	}
}

// NewFrontier creates a Frontier over store. Call Initialize before use.
func NewFrontier(store wordcrawl.Store, limiter wordcrawl.DomainLimiter, opts ...FrontierOption) *Frontier {
	f := &Frontier{
		store:   store,
		limiter: limiter,
		logger:  slog.New(slog.DiscardHandler),
		leased:  make(map[string]int),
		notify:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize fills the queue. With restart, the store must be empty (the
// caller opens it fresh) and only seeds are queued. Otherwise every pending
// admissible entry is reloaded in insertion order, and seeds are used only
// when the store holds no entries at all.
func (f *Frontier) Initialize(ctx context.Context, seeds []string, restart bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queue = nil
	if f.seen != nil {
		f.seen.Reset()
	}

	total := 0
	err := f.store.Iterate(ctx, func(e *wordcrawl.Entry) error {
		total++
		if restart {
			return nil
		}
		if f.seen != nil {
			f.seen.Add(e.Hash)
		}
		if e.Completed {
			return nil
		}
		if f.policy != nil && !f.policy.IsValid(e.URL) {
			return nil
		}
		f.queue = append(f.queue, e.URL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load frontier: %w", err)
	}

	if restart && total > 0 {
		return wordcrawl.Errorf(wordcrawl.ECONFLICT, "restart requires an empty store (found %d entries)", total)
	}

	if total > 0 {
		f.logger.Info("frontier resumed", "entries", total, "pending", len(f.queue))
		f.broadcast()
		return nil
	}

	for _, seed := range seeds {
		if _, err := f.addLocked(ctx, seed); err != nil {
			return err
		}
	}
	f.logger.Info("frontier seeded", "seeds", len(f.queue))
	f.broadcast()
	return nil
}

// Add records and enqueues rawURL unless its normalized form was seen
// before. Malformed URLs are dropped without error. The entry is durable
// before Add returns.
func (f *Frontier) Add(ctx context.Context, rawURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	added, err := f.addLocked(ctx, rawURL)
	if added {
		f.broadcast()
	}
	return added, err
}

func (f *Frontier) addLocked(ctx context.Context, rawURL string) (bool, error) {
	normalized, err := wordcrawl.Normalize(rawURL)
	if err != nil {
		f.logger.Debug("dropping malformed URL", "url", rawURL, "err", err)
		return false, nil
	}
	hash := wordcrawl.URLHash(normalized)

	if f.seen == nil || f.seen.Test(hash) {
		_, err := f.store.Get(ctx, hash)
		if err == nil {
			return false, nil
		}
		if wordcrawl.ErrorCode(err) != wordcrawl.ENOTFOUND {
			return false, fmt.Errorf("lookup %s: %w", normalized, err)
		}
	}

	if err := f.store.Put(ctx, &wordcrawl.Entry{Hash: hash, URL: normalized}); err != nil {
		return false, fmt.Errorf("record %s: %w", normalized, err)
	}
	if f.seen != nil {
		f.seen.Add(hash)
	}
	f.queue = append(f.queue, normalized)
	return true, nil
}

// Next returns the next URL after waiting out its host's politeness window.
// While the queue is empty but other callers hold URLs not yet completed,
// Next waits because those URLs may still produce links. The bool result
// is false once the queue is empty and nothing is outstanding.
//
// If ctx is cancelled during the wait the URL is returned to the head of
// the queue.
func (f *Frontier) Next(ctx context.Context) (string, bool, error) {
	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			url := f.queue[0]
			f.queue[0] = ""
			f.queue = f.queue[1:]
			wait := f.limiter.Reserve(wordcrawl.Host(url))
			f.leased[url]++
			f.mu.Unlock()

			if err := sleep(ctx, wait); err != nil {
				f.mu.Lock()
				f.queue = append([]string{url}, f.queue...)
				f.releaseLocked(url)
				f.broadcast()
				f.mu.Unlock()
				return "", false, err
			}
			return url, true, nil
		}

		if len(f.leased) == 0 {
			f.mu.Unlock()
			return "", false, nil
		}
		wake := f.notify
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-wake:
		}
	}
}

// Complete marks url processed. Completing an unknown URL records it as
// completed and logs a warning. Completing twice is harmless.
func (f *Frontier) Complete(ctx context.Context, url string) error {
	normalized, err := wordcrawl.Normalize(url)
	if err != nil {
		normalized = url
	}
	hash := wordcrawl.URLHash(normalized)

	f.mu.Lock()
	defer func() {
		f.releaseLocked(normalized)
		f.broadcast()
		f.mu.Unlock()
	}()

	if _, err := f.store.Get(ctx, hash); err != nil {
		if wordcrawl.ErrorCode(err) != wordcrawl.ENOTFOUND {
			return fmt.Errorf("lookup %s: %w", normalized, err)
		}
		f.logger.Warn("completed URL was never added", "url", normalized)
	}

	if err := f.store.Put(ctx, &wordcrawl.Entry{Hash: hash, URL: normalized, Completed: true}); err != nil {
		return fmt.Errorf("complete %s: %w", normalized, err)
	}
	if f.seen != nil {
		f.seen.Add(hash)
	}
	return nil
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Pending returns the number of URLs handed out by Next and not yet completed.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.leased {
		n += c
	}
	return n
}

func (f *Frontier) releaseLocked(url string) {
	if f.leased[url] <= 1 {
		delete(f.leased, url)
		return
	}
	f.leased[url]--
}

// broadcast wakes every Next waiting for queue changes.
func (f *Frontier) broadcast() {
	close(f.notify)
	f.notify = make(chan struct{})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
