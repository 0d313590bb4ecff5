package cache

import (
	"context"

	"github.com/roquess/fulgurance/policy"
	"github.com/roquess/fulgurance/policy/lru"
	"github.com/roquess/fulgurance/predict"
)

// cache is the single-writer engine: it owns the storage map and keeps
// the policy and predictor in lock-step with every cache event.
type cache[K comparable, V any] struct {
	m    map[K]*entry[V]
	pol  policy.Instance[K]
	pref policy.PrefetchAware[K]  // non-nil view of pol, if supported
	ev   predict.EvictionAware[K] // non-nil view of pred, if supported
	pred predict.Predictor[K]

	opt    Options[K, V]
	cap    int
	degree int

	hits, misses       uint64
	prefHits, prefSent uint64
	evictions          uint64
}

// New constructs a cache with the provided Options. It returns
// ErrInvalidConfig for a capacity below one.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if opt.Capacity < 1 {
		return nil, ErrInvalidConfig
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K]()
	}
	if opt.Predictor == nil {
		opt.Predictor = predict.NewNone[K]()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.PrefetchDegree <= 0 {
		opt.PrefetchDegree = DefaultPrefetchDegree
	}

	c := &cache[K, V]{
		m:      make(map[K]*entry[V], opt.Capacity),
		pol:    opt.Policy.New(opt.Capacity),
		pred:   opt.Predictor,
		opt:    opt,
		cap:    opt.Capacity,
		degree: opt.PrefetchDegree,
	}
	c.pref, _ = c.pol.(policy.PrefetchAware[K])
	c.ev, _ = c.pred.(predict.EvictionAware[K])
	return c, nil
}

// Get returns the value for k and a presence flag.
func (c *cache[K, V]) Get(k K) (V, bool) {
	e, ok := c.m[k]
	if !ok {
		c.miss(k)
		var zero V
		return zero, false
	}
	c.hit(k, e)
	c.prefetch(context.Background())
	return e.val, true
}

// GetOrLoad returns the value for k, loading it on miss via the
// configured Loader.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if e, ok := c.m[k]; ok {
		c.hit(k, e)
		c.prefetch(ctx)
		return e.val, nil
	}
	c.miss(k)
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}
	v, err := c.opt.Loader(ctx, k)
	if err != nil {
		var zero V
		return zero, err
	}
	c.insert(k, v, false)
	c.prefetch(ctx)
	return v, nil
}

// Put inserts or updates k→v.
func (c *cache[K, V]) Put(k K, v V) {
	if e, ok := c.m[k]; ok {
		e.val = v
		c.touch(e)
		c.pol.OnAccess(k)
		c.pred.OnAccess(k)
		c.prefetch(context.Background())
		return
	}
	c.insert(k, v, false)
	c.pred.OnAccess(k)
	c.prefetch(context.Background())
}

// Remove deletes k if present and returns the removed value.
func (c *cache[K, V]) Remove(k K) (V, bool) {
	e, ok := c.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	c.pol.OnRemove(k)
	delete(c.m, k)
	if c.ev != nil {
		c.ev.OnEvict(k)
	}
	c.opt.Metrics.Size(len(c.m))
	return e.val, true
}

// Len returns the number of resident entries.
func (c *cache[K, V]) Len() int { return len(c.m) }

// Capacity returns the fixed entry limit.
func (c *cache[K, V]) Capacity() int { return c.cap }

// Metrics returns a snapshot of the counters.
func (c *cache[K, V]) Metrics() Snapshot {
	return Snapshot{
		Hits:           c.hits,
		Misses:         c.misses,
		PrefetchHits:   c.prefHits,
		PrefetchIssued: c.prefSent,
		Evictions:      c.evictions,
		Size:           len(c.m),
	}
}

// Clear discards all entries, rebuilds the policy, and zeroes the
// counters. The predictor keeps its learned state.
func (c *cache[K, V]) Clear() {
	c.m = make(map[K]*entry[V], c.cap)
	c.pol = c.opt.Policy.New(c.cap)
	c.pref, _ = c.pol.(policy.PrefetchAware[K])
	c.hits, c.misses = 0, 0
	c.prefHits, c.prefSent = 0, 0
	c.evictions = 0
	c.opt.Metrics.Size(0)
}

// ---- internals ----

// hit records a client hit: counters, promotion of prefetched entries,
// and policy/predictor notification.
func (c *cache[K, V]) hit(k K, e *entry[V]) {
	c.hits++
	c.opt.Metrics.Hit()
	c.touch(e)
	c.pol.OnAccess(k)
	c.pred.OnAccess(k)
}

// touch promotes a prefetched entry on its first client contact.
func (c *cache[K, V]) touch(e *entry[V]) {
	if e.prefetched {
		e.prefetched = false
		c.prefHits++
		c.opt.Metrics.PrefetchHit()
	}
}

// miss records a client miss.
func (c *cache[K, V]) miss(k K) {
	c.misses++
	c.opt.Metrics.Miss()
	c.pred.OnMiss(k)
}

// insert admits k→v, evicting per policy when at capacity. Prefetched
// insertions are tagged and reported to prefetch-aware policies through
// the extended signature.
func (c *cache[K, V]) insert(k K, v V, prefetched bool) {
	if len(c.m) >= c.cap {
		if victim, ok := c.pol.Victim(); ok {
			c.evict(victim)
		}
	}
	c.m[k] = &entry[V]{val: v, prefetched: prefetched}
	if prefetched && c.pref != nil {
		c.pref.OnInsertPrefetched(k)
	} else {
		c.pol.OnInsert(k)
	}
	c.opt.Metrics.Size(len(c.m))
}

// evict removes a policy-selected victim.
func (c *cache[K, V]) evict(k K) {
	e, ok := c.m[k]
	if !ok {
		return
	}
	c.pol.OnRemove(k)
	delete(c.m, k)
	c.evictions++
	c.opt.Metrics.Evict()
	if c.ev != nil {
		c.ev.OnEvict(k)
	}
	if cb := c.opt.OnEvict; cb != nil {
		cb(k, e.val)
	}
}

// prefetch runs the speculative-load phase: ask the predictor for
// candidates, skip resident ones, and load/insert the rest as
// prefetched entries. The predictor does not observe these insertions.
// Loader failures are non-fatal.
func (c *cache[K, V]) prefetch(ctx context.Context) {
	if c.opt.Loader == nil {
		return
	}
	issued := 0
	for _, k := range c.pred.Predict() {
		if issued == c.degree {
			break
		}
		if _, resident := c.m[k]; resident {
			continue
		}
		issued++
		c.prefSent++
		c.opt.Metrics.PrefetchIssued()
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			if l := c.opt.Logger; l != nil {
				l.Debug().Interface("key", k).Err(err).Msg("prefetch load failed")
			}
			continue
		}
		c.insert(k, v, true)
	}
}
