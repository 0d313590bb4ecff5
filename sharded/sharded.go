// Package sharded composes single-writer cache engines into a
// concurrency-safe cache.
//
// The keyspace is hash-partitioned across N shards, each a private
// cache.Cache guarded by its own mutex, so the engine's single-writer
// invariants hold per shard while goroutines on different shards never
// contend. Policies and predictors are instantiated per shard through
// their factories; nothing is shared between shards except the Loader,
// the Metrics hook, and the singleflight group that coalesces
// concurrent loads for the same key.
//
// Eviction decisions and prefetch predictions are shard-local: a shard
// sees only its slice of the access stream. That is the usual sharding
// trade-off and matches per-shard policies in sharded caches generally.
package sharded

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/roquess/fulgurance/cache"
	"github.com/roquess/fulgurance/internal/singleflight"
	"github.com/roquess/fulgurance/internal/util"
)

// Options configures a sharded cache.
type Options[K comparable, V any] struct {
	// Shards is the partition count; <= 0 selects an automatic value
	// (≈ 2×GOMAXPROCS). Always rounded up to a power of two.
	Shards int

	// Cache is the per-shard engine template. Capacity is the TOTAL
	// entry limit and is split ceil-evenly across shards.
	Cache cache.Options[K, V]
}

// Cache is a sharded, concurrency-safe view over cache.Cache engines.
// All methods are safe for concurrent use by multiple goroutines.
type Cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool
	loader cache.Loader[K, V]

	sf singleflight.Group[K, V]
}

type shard[K comparable, V any] struct {
	mu   sync.Mutex
	core cache.Cache[K, V]
}

// New constructs a sharded cache. The per-shard engines are built from
// opt.Cache with its Capacity split across shards; construction errors
// from the engine (cache.ErrInvalidConfig) are returned unchanged.
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	if opt.Cache.Capacity < 1 {
		return nil, cache.ErrInvalidConfig
	}
	n := opt.Shards
	if n <= 0 {
		n = util.ReasonableShardCount()
	}
	n = int(util.NextPow2(uint64(n)))

	perShard := (opt.Cache.Capacity + n - 1) / n
	shards := make([]*shard[K, V], n)
	for i := range shards {
		co := opt.Cache
		co.Capacity = perShard
		core, err := cache.New(co)
		if err != nil {
			return nil, err
		}
		shards[i] = &shard[K, V]{core: core}
	}
	return &Cache[K, V]{
		shards: shards,
		hash:   util.Fnv64a[K],
		loader: opt.Cache.Loader,
	}, nil
}

// Get returns the value for k and a presence flag.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Get(k)
}

// GetOrLoad returns the value for k, loading it on miss. Concurrent
// loads for the same key are coalesced: exactly one caller runs the
// Loader, the rest share its result.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.loader == nil {
		var zero V
		return zero, cache.ErrNoLoader
	}
	return c.sf.Do(ctx, k, func() (V, error) {
		s := c.shardFor(k)
		s.mu.Lock()
		defer s.mu.Unlock()
		// Double-check inside the flight: a previous leader may have
		// populated the key between our miss and this call.
		return s.core.GetOrLoad(ctx, k)
	})
}

// Put inserts or updates k→v.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.closed.Load() {
		return
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.Put(k, v)
}

// Remove deletes k if present and returns the removed value.
func (c *Cache[K, V]) Remove(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Remove(k)
}

// Len returns the total number of resident entries across shards.
func (c *Cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.core.Len()
		s.mu.Unlock()
	}
	return total
}

// Capacity returns the aggregate entry limit (the requested capacity
// rounded up by the ceil split across shards).
func (c *Cache[K, V]) Capacity() int {
	total := 0
	for _, s := range c.shards {
		total += s.core.Capacity()
	}
	return total
}

// Metrics sums the per-shard counter snapshots.
func (c *Cache[K, V]) Metrics() cache.Snapshot {
	var agg cache.Snapshot
	for _, s := range c.shards {
		s.mu.Lock()
		m := s.core.Metrics()
		s.mu.Unlock()
		agg.Hits += m.Hits
		agg.Misses += m.Misses
		agg.PrefetchHits += m.PrefetchHits
		agg.PrefetchIssued += m.PrefetchIssued
		agg.Evictions += m.Evictions
		agg.Size += m.Size
	}
	return agg
}

// Clear discards all entries in every shard.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.core.Clear()
		s.mu.Unlock()
	}
}

// Close marks the cache closed. Afterwards Get reports a miss and Put and
// Remove do nothing; GetOrLoad still serves and loads keys through the
// shard engines, and Len, Capacity, Metrics, and Clear are unaffected.
func (c *Cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Cache[K, V]) shardFor(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}
