// Package cache provides a generic in-memory cache with a pluggable
// eviction policy and an orthogonal prefetch predictor.
//
// # Design
//
//   - Storage: the engine owns a map[K]*entry. Eviction policies own
//     their index structures (recency lists, frequency buckets, clock
//     buffers, ghost lists) and track keys only; the engine notifies
//     them on every insert, access, and removal, so the tracked set and
//     the storage map stay identical.
//
//   - Policies: pluggable via the policy package. LRU is the default;
//     MRU, FIFO, LFU, Random, ARC, Clock, 2Q, SLRU, and CAR ship as
//     subpackages. All bookkeeping is amortized O(1).
//
//   - Prefetching: a predictor from the predict package observes every
//     lookup. After each hit or fresh insertion the engine asks it for
//     candidate keys, loads the non-resident ones through the configured
//     Loader (bounded by PrefetchDegree), and inserts them tagged as
//     prefetched. The first client hit on such an entry counts as a
//     prefetch hit. Prefetched insertions are system-initiated: the
//     predictor does not observe them.
//
//   - Concurrency: the engine is single-writer and takes no locks. For
//     concurrent use wrap it in a mutex or use the sharded package,
//     which partitions the keyspace across independent engines. The
//     Loader must never reenter the cache instance that called it.
//
//   - Metrics: Options.Metrics receives hit/miss/prefetch/evict/size
//     signals (NoopMetrics by default; metrics/prom exports them to
//     Prometheus), and Metrics() returns the counter snapshot.
//
// # Basic usage
//
//	c, err := cache.New[int, string](cache.Options[int, string]{Capacity: 1024})
//	if err != nil { ... }
//	c.Put(1, "a")
//	if v, ok := c.Get(1); ok {
//	    _ = v
//	}
//
// # Choosing a policy
//
//	c, err := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 50_000,
//	    Policy:   twoq.New[string](), // scan-resistant
//	})
//
// # Prefetching a sequential workload
//
//	c, err := cache.New[int, string](cache.Options[int, string]{
//	    Capacity:  1024,
//	    Predictor: predict.NewSequential[int](),
//	    Loader: func(ctx context.Context, k int) (string, error) {
//	        return fetch(ctx, k)
//	    },
//	})
//	v, err := c.GetOrLoad(ctx, 41) // also warms 42
package cache
