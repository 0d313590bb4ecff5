// Package twoq implements the 2Q eviction policy.
//
// Newcomers pass through a small FIFO A1in; keys evicted from A1in leave
// a ghost in A1out. A key whose ghost is still in A1out when it is
// admitted again goes straight to the main LRU Am — one prior eviction is
// the evidence of reuse that earns promotion. A long scan therefore only
// churns A1in and never displaces the Am working set.
package twoq

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

// Default sizing, as fractions of the cache capacity.
const (
	DefaultA1inRatio  = 0.25
	DefaultGhostRatio = 0.5
)

type twoQ[K comparable] struct {
	quota    int // A1in target size
	ghostCap int

	// A1in: front = newest, back = oldest.
	in    *list.List
	inIdx map[K]*list.Element

	// Am: front = MRU, back = LRU.
	am    *list.List
	amIdx map[K]*list.Element

	// A1out ghosts: keys only, front = newest.
	ghost    *list.List
	ghostIdx map[K]*list.Element
}

type twoQPolicy[K comparable] struct {
	a1inRatio  float64
	ghostRatio float64
}

// New returns a Policy factory with the default A1in quota (25% of
// capacity) and ghost capacity (50% of capacity).
func New[K comparable]() policy.Policy[K] {
	return NewRatio[K](DefaultA1inRatio, DefaultGhostRatio)
}

// NewRatio returns a Policy factory with explicit A1in and A1out sizing
// ratios in [0, 1]. Both resolve to at least one slot.
func NewRatio[K comparable](a1inRatio, ghostRatio float64) policy.Policy[K] {
	return twoQPolicy[K]{a1inRatio: a1inRatio, ghostRatio: ghostRatio}
}

func (p twoQPolicy[K]) New(capacity int) policy.Instance[K] {
	return &twoQ[K]{
		quota:    atLeastOne(p.a1inRatio, capacity),
		ghostCap: atLeastOne(p.ghostRatio, capacity),
		in:       list.New(),
		inIdx:    make(map[K]*list.Element),
		am:       list.New(),
		amIdx:    make(map[K]*list.Element),
		ghost:    list.New(),
		ghostIdx: make(map[K]*list.Element),
	}
}

func atLeastOne(ratio float64, capacity int) int {
	n := int(ratio * float64(capacity))
	if n < 1 {
		n = 1
	}
	return n
}

// OnAccess promotes Am entries to MRU. Hits inside A1in do not reorder:
// the young queue stays a pure FIFO.
func (q *twoQ[K]) OnAccess(k K) {
	if el, ok := q.amIdx[k]; ok {
		q.am.MoveToFront(el)
	}
}

// OnInsert admits via the 2Q rules: ghost hit → Am MRU, otherwise A1in.
func (q *twoQ[K]) OnInsert(k K) {
	if el, ok := q.ghostIdx[k]; ok {
		q.ghost.Remove(el)
		delete(q.ghostIdx, k)
		q.amIdx[k] = q.am.PushFront(k)
		return
	}
	q.inIdx[k] = q.in.PushFront(k)
}

// OnRemove retires the key; departures from A1in leave a ghost in A1out.
func (q *twoQ[K]) OnRemove(k K) {
	if el, ok := q.inIdx[k]; ok {
		q.in.Remove(el)
		delete(q.inIdx, k)
		q.addGhost(k)
		return
	}
	if el, ok := q.amIdx[k]; ok {
		q.am.Remove(el)
		delete(q.amIdx, k)
	}
}

// Victim proposes the oldest A1in entry while A1in is at or above its
// quota, falling back to the Am LRU end.
func (q *twoQ[K]) Victim() (K, bool) {
	if q.in.Len() >= q.quota {
		if el := q.in.Back(); el != nil {
			return el.Value.(K), true
		}
	}
	if el := q.am.Back(); el != nil {
		return el.Value.(K), true
	}
	if el := q.in.Back(); el != nil {
		return el.Value.(K), true
	}
	var zero K
	return zero, false
}

// Len returns the number of resident keys.
func (q *twoQ[K]) Len() int { return q.in.Len() + q.am.Len() }

func (q *twoQ[K]) addGhost(k K) {
	if old, ok := q.ghostIdx[k]; ok {
		q.ghost.Remove(old)
	}
	q.ghostIdx[k] = q.ghost.PushFront(k)
	for q.ghost.Len() > q.ghostCap {
		tail := q.ghost.Back()
		delete(q.ghostIdx, tail.Value.(K))
		q.ghost.Remove(tail)
	}
}
