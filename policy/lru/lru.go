// Package lru implements the Least-Recently-Used eviction policy.
package lru

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

// lru keeps a recency list (front = MRU, back = LRU) and a key→element
// index for O(1) promotion and removal.
type lru[K comparable] struct {
	order *list.List
	idx   map[K]*list.Element // element.Value is K
}

type lruPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache LRU instances.
func New[K comparable]() policy.Policy[K] { return lruPolicy[K]{} }

func (lruPolicy[K]) New(capacity int) policy.Instance[K] {
	return &lru[K]{
		order: list.New(),
		idx:   make(map[K]*list.Element, capacity),
	}
}

// OnAccess promotes the key to MRU.
func (p *lru[K]) OnAccess(k K) {
	if el, ok := p.idx[k]; ok {
		p.order.MoveToFront(el)
	}
}

// OnInsert admits the key at MRU.
func (p *lru[K]) OnInsert(k K) {
	p.idx[k] = p.order.PushFront(k)
}

// OnInsertPrefetched admits a system-initiated entry at the cold end,
// so a speculative load that never gets used is the first to go.
func (p *lru[K]) OnInsertPrefetched(k K) {
	p.idx[k] = p.order.PushBack(k)
}

// OnRemove forgets the key.
func (p *lru[K]) OnRemove(k K) {
	if el, ok := p.idx[k]; ok {
		p.order.Remove(el)
		delete(p.idx, k)
	}
}

// Victim proposes the LRU end.
func (p *lru[K]) Victim() (K, bool) {
	if el := p.order.Back(); el != nil {
		return el.Value.(K), true
	}
	var zero K
	return zero, false
}

// Len returns the number of tracked keys.
func (p *lru[K]) Len() int { return p.order.Len() }

var _ policy.PrefetchAware[int] = (*lru[int])(nil)
