// Package fifo implements the First-In-First-Out eviction policy.
//
// Accesses never reorder the queue: the victim is always the oldest
// inserted entry.
package fifo

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

type fifo[K comparable] struct {
	queue *list.List // front = newest, back = oldest
	idx   map[K]*list.Element
}

type fifoPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache FIFO instances.
func New[K comparable]() policy.Policy[K] { return fifoPolicy[K]{} }

func (fifoPolicy[K]) New(capacity int) policy.Instance[K] {
	return &fifo[K]{
		queue: list.New(),
		idx:   make(map[K]*list.Element, capacity),
	}
}

// OnAccess is a no-op: FIFO ignores recency.
func (p *fifo[K]) OnAccess(K) {}

// OnInsert enqueues the key as newest.
func (p *fifo[K]) OnInsert(k K) {
	p.idx[k] = p.queue.PushFront(k)
}

// OnRemove forgets the key wherever it sits in the queue.
func (p *fifo[K]) OnRemove(k K) {
	if el, ok := p.idx[k]; ok {
		p.queue.Remove(el)
		delete(p.idx, k)
	}
}

// Victim proposes the oldest inserted key.
func (p *fifo[K]) Victim() (K, bool) {
	if el := p.queue.Back(); el != nil {
		return el.Value.(K), true
	}
	var zero K
	return zero, false
}

// Len returns the number of tracked keys.
func (p *fifo[K]) Len() int { return p.queue.Len() }
