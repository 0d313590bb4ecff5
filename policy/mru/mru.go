// Package mru implements the Most-Recently-Used eviction policy.
//
// MRU discards the entry touched most recently. It suits cyclic scans
// larger than the cache, where the least recently used entry is exactly
// the one that will be needed soonest.
package mru

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

// mru shares the LRU bookkeeping (front = most recent) but evicts from
// the front instead of the back.
type mru[K comparable] struct {
	order *list.List
	idx   map[K]*list.Element
}

type mruPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache MRU instances.
func New[K comparable]() policy.Policy[K] { return mruPolicy[K]{} }

func (mruPolicy[K]) New(capacity int) policy.Instance[K] {
	return &mru[K]{
		order: list.New(),
		idx:   make(map[K]*list.Element, capacity),
	}
}

// OnAccess marks the key most recent.
func (p *mru[K]) OnAccess(k K) {
	if el, ok := p.idx[k]; ok {
		p.order.MoveToFront(el)
	}
}

// OnInsert admits the key as most recent.
func (p *mru[K]) OnInsert(k K) {
	p.idx[k] = p.order.PushFront(k)
}

// OnRemove forgets the key.
func (p *mru[K]) OnRemove(k K) {
	if el, ok := p.idx[k]; ok {
		p.order.Remove(el)
		delete(p.idx, k)
	}
}

// Victim proposes the most recently used key (list front).
func (p *mru[K]) Victim() (K, bool) {
	if el := p.order.Front(); el != nil {
		return el.Value.(K), true
	}
	var zero K
	return zero, false
}

// Len returns the number of tracked keys.
func (p *mru[K]) Len() int { return p.order.Len() }
