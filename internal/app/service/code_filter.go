package service

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// CodeFilter is a bloom-filter guard over the set of issued short codes.
// A definite miss lets the resolve path answer "not found" without
// touching the cache or the store, which keeps lookups of never-issued
// codes from hammering Postgres. False positives only cost a store
// round-trip. The filter is seeded from the store at startup and assumes
// this process is the only code issuer.
type CodeFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewCodeFilter sizes a filter for the expected number of codes and the
// acceptable false-positive rate.
func NewCodeFilter(capacity uint, fpRate float64) *CodeFilter {
	if capacity == 0 {
		capacity = 1_000_000
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	return &CodeFilter{filter: bloom.NewWithEstimates(capacity, fpRate)}
}

// Seed adds a batch of known codes, typically at startup.
func (f *CodeFilter) Seed(codes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range codes {
		f.filter.AddString(code)
	}
}

// Add records a newly issued code.
func (f *CodeFilter) Add(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(code)
}

// MightContain reports whether the code may have been issued. A false
// result is definitive.
func (f *CodeFilter) MightContain(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(code)
}
