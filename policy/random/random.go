// Package random implements uniform random eviction.
package random

import (
	"math/rand"

	"github.com/roquess/fulgurance/policy"
)

// DefaultSeed is the seed used by New. A fixed seed keeps eviction
// sequences reproducible across runs and in tests.
const DefaultSeed int64 = 1

// random keeps a dense slice of keys plus a key→index map so that
// sampling and swap-removal are both O(1).
type random[K comparable] struct {
	keys []K
	idx  map[K]int
	rng  *rand.Rand
}

type randomPolicy[K comparable] struct{ seed int64 }

// New returns a Policy factory using DefaultSeed.
func New[K comparable]() policy.Policy[K] { return NewSeeded[K](DefaultSeed) }

// NewSeeded returns a Policy factory with an explicit PRNG seed.
// Each instance gets its own rand.Rand; there is no shared state.
func NewSeeded[K comparable](seed int64) policy.Policy[K] {
	return randomPolicy[K]{seed: seed}
}

func (p randomPolicy[K]) New(capacity int) policy.Instance[K] {
	return &random[K]{
		keys: make([]K, 0, capacity),
		idx:  make(map[K]int, capacity),
		rng:  rand.New(rand.NewSource(p.seed)),
	}
}

// OnAccess is a no-op: random eviction keeps no recency state.
func (p *random[K]) OnAccess(K) {}

// OnInsert appends the key to the sample pool.
func (p *random[K]) OnInsert(k K) {
	p.idx[k] = len(p.keys)
	p.keys = append(p.keys, k)
}

// OnRemove swap-removes the key from the pool.
func (p *random[K]) OnRemove(k K) {
	i, ok := p.idx[k]
	if !ok {
		return
	}
	last := len(p.keys) - 1
	if i != last {
		p.keys[i] = p.keys[last]
		p.idx[p.keys[i]] = i
	}
	p.keys = p.keys[:last]
	delete(p.idx, k)
}

// Victim proposes a uniformly sampled tracked key.
func (p *random[K]) Victim() (K, bool) {
	if len(p.keys) == 0 {
		var zero K
		return zero, false
	}
	return p.keys[p.rng.Intn(len(p.keys))], true
}

// Len returns the number of tracked keys.
func (p *random[K]) Len() int { return len(p.keys) }
