package cache

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/roquess/fulgurance/policy"
	"github.com/roquess/fulgurance/policy/arc"
	"github.com/roquess/fulgurance/policy/car"
	"github.com/roquess/fulgurance/policy/clock"
	"github.com/roquess/fulgurance/policy/fifo"
	"github.com/roquess/fulgurance/policy/lfu"
	"github.com/roquess/fulgurance/policy/lru"
	"github.com/roquess/fulgurance/policy/mru"
	"github.com/roquess/fulgurance/policy/random"
	"github.com/roquess/fulgurance/policy/slru"
	"github.com/roquess/fulgurance/policy/twoq"
)

func mustNew[K comparable, V any](t *testing.T, opt Options[K, V]) Cache[K, V] {
	t.Helper()
	c, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCache_InvalidCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		if _, err := New[string, int](Options[string, int]{Capacity: capacity}); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("capacity %d: want ErrInvalidConfig, got %v", capacity, err)
		}
	}
}

// Basic Put/Get/Remove semantics.
func TestCache_BasicPutGetRemove(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[string, int]{Capacity: 8})

	c.Put("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get a want 1, got %v ok=%v", v, ok)
	}

	c.Put("a", 11) // overwrite
	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("Get a want 11, got %v ok=%v", v, ok)
	}

	if v, ok := c.Remove("a"); !ok || v != 11 {
		t.Fatalf("Remove a want (11, true), got (%v, %v)", v, ok)
	}
	if _, ok := c.Remove("a"); ok {
		t.Fatal("second Remove must report absent")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
}

// Deterministic LRU eviction: accessing a key promotes it; the least
// recently used key goes first.
func TestCache_EvictionLRU(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 3})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	if _, ok := c.Get(1); !ok { // promote 1
		t.Fatal("expect hit for 1")
	}
	c.Put(4, "d") // overflow -> evict LRU (2)

	if _, ok := c.Get(2); ok {
		t.Fatal("2 must be evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%d must be resident", k)
		}
	}
	if got := c.Metrics().Evictions; got != 1 {
		t.Fatalf("evictions want 1, got %d", got)
	}
}

// LFU evicts the minimum-frequency key; on a frequency tie the
// oldest-inserted key goes first.
func TestCache_EvictionLFUTieBreak(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 2, Policy: lfu.New[int]()})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(1)
	c.Get(2)
	c.Put(3, "c") // both at freq 2; oldest-inserted (1) evicted

	if _, ok := c.Get(1); ok {
		t.Fatal("1 must be evicted on the tie")
	}
	for _, k := range []int{2, 3} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%d must be resident", k)
		}
	}
}

// FIFO ignores accesses: insertion order alone decides the victim.
func TestCache_EvictionFIFOIgnoresAccess(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 2, Policy: fifo.New[int]()})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(1) // does not protect 1
	c.Put(3, "c")

	if _, ok := c.Get(1); ok {
		t.Fatal("1 must be evicted despite the recent access")
	}
	for _, k := range []int{2, 3} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%d must be resident", k)
		}
	}
}

// MRU evicts the most recently used entry.
func TestCache_EvictionMRU(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 2, Policy: mru.New[int]()})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c") // evicts 2, the most recent

	if _, ok := c.Get(2); ok {
		t.Fatal("2 must be evicted")
	}
	for _, k := range []int{1, 3} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%d must be resident", k)
		}
	}
}

// ARC keeps part of a re-referenced working set across a one-shot scan,
// unlike pure LRU which would evict all of it.
func TestCache_ARCScanResistance(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 4, Policy: arc.New[int]()})

	for _, k := range []int{1, 2, 3, 4} {
		c.Put(k, "warm")
	}
	for round := 0; round < 3; round++ {
		for _, k := range []int{1, 2, 3, 4} {
			if _, ok := c.Get(k); !ok {
				t.Fatalf("warm key %d missing before scan", k)
			}
		}
	}

	for _, k := range []int{5, 6, 7, 8} {
		c.Put(k, "scan")
	}

	survivors := 0
	for _, k := range []int{1, 2, 3, 4} {
		if _, ok := c.Get(k); ok {
			survivors++
		}
	}
	if survivors == 0 {
		t.Fatal("ARC must keep at least one warm key across the scan")
	}
}

// Overwrites never evict.
func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 2})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(2, "b2")

	if c.Len() != 2 {
		t.Fatalf("len want 2, got %d", c.Len())
	}
	if got := c.Metrics().Evictions; got != 0 {
		t.Fatalf("evictions want 0, got %d", got)
	}
}

// GetOrLoad without a Loader fails; with one it loads once and then hits.
func TestCache_GetOrLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	bare := mustNew(t, Options[string, string]{Capacity: 4})
	if _, err := bare.GetOrLoad(ctx, "k"); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("want ErrNoLoader, got %v", err)
	}

	calls := 0
	c := mustNew(t, Options[string, string]{
		Capacity: 4,
		Loader: func(_ context.Context, k string) (string, error) {
			calls++
			return "v:" + k, nil
		},
	})
	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(ctx, "k")
		if err != nil || v != "v:k" {
			t.Fatalf("GetOrLoad: v=%q err=%v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("loader must run once, ran %d times", calls)
	}

	m := c.Metrics()
	if m.Misses != 1 || m.Hits != 2 {
		t.Fatalf("want 1 miss / 2 hits, got %d / %d", m.Misses, m.Hits)
	}
}

// Loader errors surface unchanged and leave the cache untouched beyond
// the miss counter.
func TestCache_LoaderErrorPropagates(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	c := mustNew(t, Options[string, string]{
		Capacity: 4,
		Loader: func(context.Context, string) (string, error) {
			return "", errBoom
		},
	})

	if _, err := c.GetOrLoad(context.Background(), "k"); !errors.Is(err, errBoom) {
		t.Fatalf("want the loader error unchanged, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("failed load must not insert, len=%d", c.Len())
	}
	m := c.Metrics()
	if m.Misses != 1 || m.Hits != 0 || m.Evictions != 0 {
		t.Fatalf("only the miss counter may move, got %+v", m)
	}
}

// OnEvict fires for capacity evictions with the evicted pair, and not
// for explicit removals.
func TestCache_OnEvictCallback(t *testing.T) {
	t.Parallel()

	type pair struct {
		k int
		v string
	}
	var evicted []pair
	c := mustNew(t, Options[int, string]{
		Capacity: 2,
		OnEvict:  func(k int, v string) { evicted = append(evicted, pair{k, v}) },
	})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Remove(2)
	c.Put(3, "c")
	c.Put(4, "d") // evicts 1 (LRU)

	if len(evicted) != 1 || evicted[0] != (pair{1, "a"}) {
		t.Fatalf("want OnEvict(1, a) once, got %v", evicted)
	}
}

// Clear empties the cache, resets counters, and leaves it usable.
func TestCache_Clear(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, string]{Capacity: 4})

	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(1)
	c.Get(9)
	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("len after Clear want 0, got %d", c.Len())
	}
	if m := c.Metrics(); m != (Snapshot{}) {
		t.Fatalf("metrics after Clear want zero, got %+v", m)
	}
	if c.Capacity() != 4 {
		t.Fatalf("capacity must survive Clear")
	}

	c.Put(3, "c")
	if v, ok := c.Get(3); !ok || v != "c" {
		t.Fatal("cache must be usable after Clear")
	}
}

// Hits and misses partition the lookup stream.
func TestCache_MetricsAccounting(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Options[int, int]{Capacity: 4})

	lookups := 0
	for i := 0; i < 10; i++ {
		c.Put(i%5, i)
		c.Get(i % 7)
		lookups++
	}
	m := c.Metrics()
	if m.Hits+m.Misses != uint64(lookups) {
		t.Fatalf("hits+misses=%d, want %d", m.Hits+m.Misses, lookups)
	}
	if m.Size != c.Len() {
		t.Fatalf("snapshot size %d != len %d", m.Size, c.Len())
	}
}

// Every policy keeps the size bound and round-trip semantics under a
// randomized workload.
func TestCache_InvariantsAllPolicies(t *testing.T) {
	t.Parallel()

	policies := map[string]policy.Policy[int]{
		"lru":    lru.New[int](),
		"mru":    mru.New[int](),
		"fifo":   fifo.New[int](),
		"lfu":    lfu.New[int](),
		"random": random.New[int](),
		"clock":  clock.New[int](),
		"arc":    arc.New[int](),
		"twoq":   twoq.New[int](),
		"slru":   slru.New[int](),
		"car":    car.New[int](),
	}

	for name, pol := range policies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			const capacity = 16
			c := mustNew(t, Options[int, string]{Capacity: capacity, Policy: pol})
			mirror := make(map[int]string)
			r := rand.New(rand.NewSource(42))

			for op := 0; op < 5_000; op++ {
				k := r.Intn(3 * capacity)
				switch r.Intn(10) {
				case 0: // remove
					c.Remove(k)
					delete(mirror, k)
				case 1, 2, 3: // lookup
					v, ok := c.Get(k)
					if ok {
						want, tracked := mirror[k]
						if !tracked {
							t.Fatalf("op %d: hit on key %d the cache should not hold", op, k)
						}
						if v != want {
							t.Fatalf("op %d: key %d want %q got %q", op, k, want, v)
						}
					}
				default: // insert/update
					v := strconv.Itoa(op)
					c.Put(k, v)
					mirror[k] = v
				}

				if c.Len() > capacity {
					t.Fatalf("op %d: size %d exceeds capacity %d", op, c.Len(), capacity)
				}
				if c.Metrics().Size != c.Len() {
					t.Fatalf("op %d: snapshot size diverged", op)
				}
			}
		})
	}
}
