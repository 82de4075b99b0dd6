package crawl

import (
	"sync"
	"time"

	"github.com/fwojciec/wordcrawl"
	"golang.org/x/time/rate"
)

var _ wordcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces requests to the same host by at least a fixed window
// using one token bucket per host. Different hosts never delay each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	state    map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithClock sets the time source. Used by tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(d *DomainLimiter) {
		d.now = now
	}
}

// NewDomainLimiter creates a DomainLimiter that allows one request per
// window to each host. Each host gets a burst of 1. A window <= 0 disables
// waiting but access times are still recorded.
func NewDomainLimiter(window time.Duration, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		state:    make(map[string]time.Time),
		window:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reserve claims the next slot for domain and returns how long the caller
// must wait before fetching. The slot is recorded as the domain's last access
// time, so concurrent callers are spaced one window apart.
func (d *DomainLimiter) Reserve(domain string) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.window <= 0 {
		d.state[domain] = now
		return 0
	}

	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(d.window), 1)
		d.limiters[domain] = limiter
	}

	delay := limiter.ReserveN(now, 1).DelayFrom(now)
	d.state[domain] = now.Add(delay)
	return delay
}

// State returns the recorded access time for domain.
// The bool result is false if the domain was never reserved.
func (d *DomainLimiter) State(domain string) (wordcrawl.DomainState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.state[domain]
	if !ok {
		return wordcrawl.DomainState{}, false
	}
	return wordcrawl.DomainState{Domain: domain, LastAccess: last}, true
}
