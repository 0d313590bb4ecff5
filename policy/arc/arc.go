// Package arc implements the Adaptive Replacement Cache policy of
// Megiddo and Modha.
//
// Resident entries split across a recency list T1 and a frequency list
// T2; ghost lists B1 and B2 remember recently discarded keys from each.
// A ghost hit signals a missed opportunity and moves the adaptive target
// p toward the list that would have kept the key:
//
//	hit in B1: p = min(p + max(1, |B2|/|B1|), c)
//	hit in B2: p = max(p − max(1, |B1|/|B2|), 0)
//
// Directory invariants: |T1|+|T2| ≤ c, |T1|+|B1| ≤ c, and the four lists
// together hold at most 2c keys.
package arc

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

// klist pairs a list with a key index for O(1) membership and removal.
// Front is MRU.
type klist[K comparable] struct {
	l   *list.List
	idx map[K]*list.Element
}

func newKlist[K comparable]() *klist[K] {
	return &klist[K]{l: list.New(), idx: make(map[K]*list.Element)}
}

func (q *klist[K]) has(k K) bool { _, ok := q.idx[k]; return ok }
func (q *klist[K]) len() int     { return q.l.Len() }

func (q *klist[K]) pushFront(k K) { q.idx[k] = q.l.PushFront(k) }

func (q *klist[K]) remove(k K) bool {
	el, ok := q.idx[k]
	if !ok {
		return false
	}
	q.l.Remove(el)
	delete(q.idx, k)
	return true
}

func (q *klist[K]) back() (K, bool) {
	if el := q.l.Back(); el != nil {
		return el.Value.(K), true
	}
	var zero K
	return zero, false
}

func (q *klist[K]) dropBack() {
	if k, ok := q.back(); ok {
		q.remove(k)
	}
}

type arc[K comparable] struct {
	c int
	p int // target size of T1, in [0, c]

	t1, t2 *klist[K] // resident
	b1, b2 *klist[K] // ghosts (keys only)
}

type arcPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache ARC instances.
func New[K comparable]() policy.Policy[K] { return arcPolicy[K]{} }

func (arcPolicy[K]) New(capacity int) policy.Instance[K] {
	return &arc[K]{
		c:  capacity,
		t1: newKlist[K](),
		t2: newKlist[K](),
		b1: newKlist[K](),
		b2: newKlist[K](),
	}
}

// OnAccess promotes a resident key into T2 (first re-reference moves it
// out of T1; later references refresh its T2 position).
func (p *arc[K]) OnAccess(k K) {
	if p.t1.remove(k) {
		p.t2.pushFront(k)
		return
	}
	if p.t2.has(k) {
		p.t2.remove(k)
		p.t2.pushFront(k)
	}
}

// OnInsert admits a key the engine is inserting. Ghost hits adapt p and
// admit straight into T2; cold keys enter T1.
func (p *arc[K]) OnInsert(k K) {
	switch {
	case p.b1.has(k):
		p.p = min(p.p+adaptStep(p.b2.len(), p.b1.len()), p.c)
		p.b1.remove(k)
		p.t2.pushFront(k)
	case p.b2.has(k):
		p.p = max(p.p-adaptStep(p.b1.len(), p.b2.len()), 0)
		p.b2.remove(k)
		p.t2.pushFront(k)
	default:
		p.t1.pushFront(k)
	}
	p.trimGhosts()
}

// OnRemove retires a resident key into the matching ghost list.
func (p *arc[K]) OnRemove(k K) {
	if p.t1.remove(k) {
		p.b1.pushFront(k)
		p.trimGhosts()
		return
	}
	if p.t2.remove(k) {
		p.b2.pushFront(k)
		p.trimGhosts()
	}
}

// Victim replaces from T1 while it holds at least the target p entries,
// otherwise from T2.
func (p *arc[K]) Victim() (K, bool) {
	if p.t1.len() >= max(1, p.p) {
		if k, ok := p.t1.back(); ok {
			return k, true
		}
	}
	if k, ok := p.t2.back(); ok {
		return k, true
	}
	return p.t1.back()
}

// Len returns the number of resident keys.
func (p *arc[K]) Len() int { return p.t1.len() + p.t2.len() }

// trimGhosts restores the directory bounds after any ghost growth.
func (p *arc[K]) trimGhosts() {
	for p.t1.len()+p.b1.len() > p.c {
		p.b1.dropBack()
	}
	for p.t1.len()+p.t2.len()+p.b1.len()+p.b2.len() > 2*p.c {
		if p.b2.len() > 0 {
			p.b2.dropBack()
		} else {
			p.b1.dropBack()
		}
	}
}

// adaptStep is the integer step max(1, a/b) used by the p transitions.
func adaptStep(a, b int) int {
	if b <= 0 {
		return 1
	}
	return max(1, a/b)
}
