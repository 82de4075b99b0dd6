// Package bloom provides a probabilistic seen-set in front of the frontier
// store. A negative answer proves a key was never added, which lets the
// frontier skip a database lookup for most newly discovered URLs.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter over string keys (URL hashes in practice).
// It is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records key.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if key might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// TestAndAdd records key and reports whether it might have been present before.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Reset empties the filter.
func (f *Filter) Reset() {
	f.f.ClearAll()
}
