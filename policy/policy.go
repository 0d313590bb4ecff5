// Package policy defines the contract between the cache engine and its
// pluggable eviction policies.
package policy

// Instance is an eviction policy bound to a single cache instance.
// It tracks exactly the set of keys resident in that cache: the engine
// calls OnInsert for every admission and OnRemove for every removal or
// eviction, so the tracked set and the storage map never diverge.
//
// Concurrency: the engine is single-writer; none of these methods need
// internal locking.
//
// Semantics:
//   - OnAccess records a client hit (or an in-place update) of a resident key.
//   - OnInsert records the admission of a key not currently tracked.
//   - OnRemove records that a key leaves the cache, whether evicted or
//     explicitly removed. Ghost-keeping policies (ARC/CAR/2Q) update their
//     ghost lists here.
//   - Victim proposes a currently-tracked key to discard. The engine calls
//     it only when it is full and about to admit an untracked key, and
//     always removes the returned key before inserting.
type Instance[K comparable] interface {
	OnAccess(k K)
	OnInsert(k K)
	OnRemove(k K)
	Victim() (K, bool)
	Len() int
}

// PrefetchAware is an optional extension for policies that admit
// system-initiated (prefetched) entries with lower priority than client
// insertions. Policies that do not implement it get OnInsert for both.
type PrefetchAware[K comparable] interface {
	OnInsertPrefetched(k K)
}

// Policy is a factory that creates policy instances bound to a fixed
// capacity. The engine invokes New once per cache (or per shard, when the
// cache is sharded) and again on every Clear, so instances never share
// state.
type Policy[K comparable] interface {
	New(capacity int) Instance[K]
}
