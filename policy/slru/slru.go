// Package slru implements Segmented LRU.
//
// The cache splits into a probationary segment and a protected segment.
// Insertions land in probation; a probationary hit promotes the key into
// the protected segment, demoting its LRU entry back to probation when
// the segment is full. Victims come from probation first, so entries
// touched only once never displace proven ones.
package slru

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

// DefaultProtectedRatio is the protected segment's share of capacity.
const DefaultProtectedRatio = 0.8

type slru[K comparable] struct {
	protCap int

	// Both segments: front = MRU, back = LRU.
	prob    *list.List
	probIdx map[K]*list.Element
	prot    *list.List
	protIdx map[K]*list.Element
}

type slruPolicy[K comparable] struct{ protectedRatio float64 }

// New returns a Policy factory with the default 80/20 protected split.
func New[K comparable]() policy.Policy[K] {
	return NewRatio[K](DefaultProtectedRatio)
}

// NewRatio returns a Policy factory with an explicit protected ratio in
// [0, 1]. The protected segment holds at least one entry.
func NewRatio[K comparable](protectedRatio float64) policy.Policy[K] {
	return slruPolicy[K]{protectedRatio: protectedRatio}
}

func (p slruPolicy[K]) New(capacity int) policy.Instance[K] {
	protCap := int(p.protectedRatio * float64(capacity))
	if protCap < 1 {
		protCap = 1
	}
	return &slru[K]{
		protCap: protCap,
		prob:    list.New(),
		probIdx: make(map[K]*list.Element),
		prot:    list.New(),
		protIdx: make(map[K]*list.Element),
	}
}

// OnAccess promotes probationary hits into the protected segment and
// refreshes protected hits in place.
func (p *slru[K]) OnAccess(k K) {
	if el, ok := p.protIdx[k]; ok {
		p.prot.MoveToFront(el)
		return
	}
	el, ok := p.probIdx[k]
	if !ok {
		return
	}
	p.prob.Remove(el)
	delete(p.probIdx, k)
	p.protIdx[k] = p.prot.PushFront(k)

	// The protected segment never grows past its share: demote its LRU
	// entry back to the head of probation.
	if p.prot.Len() > p.protCap {
		tail := p.prot.Back()
		dk := tail.Value.(K)
		p.prot.Remove(tail)
		delete(p.protIdx, dk)
		p.probIdx[dk] = p.prob.PushFront(dk)
	}
}

// OnInsert admits the key at the probationary MRU end.
func (p *slru[K]) OnInsert(k K) {
	p.probIdx[k] = p.prob.PushFront(k)
}

// OnRemove forgets the key from whichever segment holds it.
func (p *slru[K]) OnRemove(k K) {
	if el, ok := p.probIdx[k]; ok {
		p.prob.Remove(el)
		delete(p.probIdx, k)
		return
	}
	if el, ok := p.protIdx[k]; ok {
		p.prot.Remove(el)
		delete(p.protIdx, k)
	}
}

// Victim proposes the probationary LRU end, falling back to the
// protected LRU end when probation is empty.
func (p *slru[K]) Victim() (K, bool) {
	if el := p.prob.Back(); el != nil {
		return el.Value.(K), true
	}
	if el := p.prot.Back(); el != nil {
		return el.Value.(K), true
	}
	var zero K
	return zero, false
}

// Len returns the number of resident keys.
func (p *slru[K]) Len() int { return p.prob.Len() + p.prot.Len() }
