// Package lfu implements the Least-Frequently-Used eviction policy.
package lfu

import (
	"container/list"
	"math"

	"github.com/roquess/fulgurance/policy"
)

// lfu keeps a per-key frequency counter and frequency buckets: each bucket
// is a list of keys sharing a count, ordered by when each key reached that
// count, so ties break toward the key that got there first. For keys with
// identical access histories that is the oldest-inserted key; the
// original insertion order is not tracked otherwise. minFreq tracks the
// lowest populated bucket for O(1) victim selection.
type lfu[K comparable] struct {
	entries map[K]*lfuEntry[K]
	buckets map[uint64]*list.List // freq -> keys, front = oldest at this freq
	minFreq uint64
}

type lfuEntry[K comparable] struct {
	freq uint64
	el   *list.Element // element in buckets[freq]; Value is K
}

type lfuPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache LFU instances.
func New[K comparable]() policy.Policy[K] { return lfuPolicy[K]{} }

func (lfuPolicy[K]) New(capacity int) policy.Instance[K] {
	return &lfu[K]{
		entries: make(map[K]*lfuEntry[K], capacity),
		buckets: make(map[uint64]*list.List),
	}
}

// OnAccess increments the key's counter and moves it up one bucket.
// Counters saturate at the maximum uint64 value.
func (p *lfu[K]) OnAccess(k K) {
	e, ok := p.entries[k]
	if !ok {
		return
	}
	if e.freq == math.MaxUint64 {
		return
	}
	p.unlink(k, e)
	e.freq++
	e.el = p.bucket(e.freq).PushBack(k)
	if p.minFreq == e.freq-1 && p.buckets[e.freq-1] == nil {
		p.minFreq = e.freq
	}
}

// OnInsert admits the key at frequency 1.
func (p *lfu[K]) OnInsert(k K) {
	e := &lfuEntry[K]{freq: 1}
	e.el = p.bucket(1).PushBack(k)
	p.entries[k] = e
	p.minFreq = 1
}

// OnRemove forgets the key and its counter.
func (p *lfu[K]) OnRemove(k K) {
	e, ok := p.entries[k]
	if !ok {
		return
	}
	p.unlink(k, e)
	delete(p.entries, k)
	if len(p.entries) == 0 {
		p.minFreq = 0
		return
	}
	// The removed key may have emptied the minimum bucket; rescan upward.
	if p.buckets[p.minFreq] == nil {
		f := p.minFreq
		for p.buckets[f] == nil {
			f++
		}
		p.minFreq = f
	}
}

// Victim proposes the oldest key in the minimum-frequency bucket.
func (p *lfu[K]) Victim() (K, bool) {
	if b := p.buckets[p.minFreq]; b != nil {
		if el := b.Front(); el != nil {
			return el.Value.(K), true
		}
	}
	var zero K
	return zero, false
}

// Len returns the number of tracked keys.
func (p *lfu[K]) Len() int { return len(p.entries) }

// bucket returns the list for freq, creating it on demand.
func (p *lfu[K]) bucket(freq uint64) *list.List {
	b := p.buckets[freq]
	if b == nil {
		b = list.New()
		p.buckets[freq] = b
	}
	return b
}

// unlink detaches the key from its current bucket, dropping the bucket
// when it empties.
func (p *lfu[K]) unlink(k K, e *lfuEntry[K]) {
	b := p.buckets[e.freq]
	b.Remove(e.el)
	if b.Len() == 0 {
		delete(p.buckets, e.freq)
	}
}
