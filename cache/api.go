package cache

import "context"

// Cache is an in-memory key/value cache with a pluggable eviction
// policy and an optional prefetch predictor.
//
// A Cache is single-writer: one logical owner at a time. Wrap it in a
// mutex or use the sharded package for concurrent use; calling methods
// from multiple goroutines without external synchronization is a data
// race. Within one owner, every observer reflects all prior operations.
//
// Typical operation cost is amortized O(1): a map access plus
// constant-time policy bookkeeping (O(log capacity) for tree-shaped
// policy structures is acceptable per the policy contracts).
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag. On hit the
	// policy and predictor observe the access and a prefetch phase may
	// run; on miss only the miss is recorded — nothing is loaded.
	Get(k K) (V, bool)

	// GetOrLoad returns the value for k, fetching it via the configured
	// Loader on miss and inserting the result (possibly evicting per
	// policy). Loader errors are returned unchanged and leave the cache
	// state untouched beyond the miss counter. Returns ErrNoLoader if
	// no Loader was configured.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Put inserts or updates k→v. An update counts as an access for
	// the policy and predictor; a fresh insert may evict per policy.
	// Overwrites never evict.
	Put(k K, v V)

	// Remove deletes k if present and returns the removed value.
	// Removing an absent key is not an error.
	Remove(k K) (V, bool)

	// Len returns the number of resident entries.
	Len() int

	// Capacity returns the fixed entry limit.
	Capacity() int

	// Metrics returns a snapshot of the counters.
	Metrics() Snapshot

	// Clear discards all entries, resets the policy state and the
	// counters. Predictor learned state survives: it models the access
	// stream, not residency.
	Clear()
}
