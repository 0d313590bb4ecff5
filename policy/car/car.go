// Package car implements CAR (Clock with Adaptive Replacement) of
// Bansal and Modha.
//
// CAR keeps ARC's four-list directory — resident T1/T2, ghost B1/B2, and
// the adaptive target p — but replaces the LRU ordering of the resident
// lists with clock scans over reference bits. A hit only sets a bit; the
// victim scan gives referenced T1 pages a second chance by migrating
// them to T2 instead of promoting on every access.
package car

import (
	"container/list"

	"github.com/roquess/fulgurance/policy"
)

// page is a clock slot: a key plus its reference bit.
type page[K comparable] struct {
	key K
	ref bool
}

const (
	inT1 = iota
	inT2
)

type carEntry[K comparable] struct {
	el    *list.Element // Value is *page[K]
	where int
}

type car[K comparable] struct {
	c int
	p int // target size of T1, in [0, c]

	// Clocks: front = hand position (oldest), back = tail.
	t1, t2 *list.List
	res    map[K]*carEntry[K]

	// Ghosts: plain LRU lists of keys, front = newest.
	b1, b2       *list.List
	b1Idx, b2Idx map[K]*list.Element
}

type carPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache CAR instances.
func New[K comparable]() policy.Policy[K] { return carPolicy[K]{} }

func (carPolicy[K]) New(capacity int) policy.Instance[K] {
	return &car[K]{
		c:     capacity,
		t1:    list.New(),
		t2:    list.New(),
		res:   make(map[K]*carEntry[K], capacity),
		b1:    list.New(),
		b2:    list.New(),
		b1Idx: make(map[K]*list.Element),
		b2Idx: make(map[K]*list.Element),
	}
}

// OnAccess sets the page's reference bit; no list movement on hits.
func (p *car[K]) OnAccess(k K) {
	if e, ok := p.res[k]; ok {
		e.el.Value.(*page[K]).ref = true
	}
}

// OnInsert admits a key. Ghost hits adapt p and enter T2; cold keys
// enter the T1 clock. New pages start with the reference bit clear.
func (p *car[K]) OnInsert(k K) {
	pg := &page[K]{key: k}
	switch {
	case p.b1Idx[k] != nil:
		p.p = min(p.p+adaptStep(p.b2.Len(), p.b1.Len()), p.c)
		p.dropGhost(k)
		p.res[k] = &carEntry[K]{el: p.t2.PushBack(pg), where: inT2}
	case p.b2Idx[k] != nil:
		p.p = max(p.p-adaptStep(p.b1.Len(), p.b2.Len()), 0)
		p.dropGhost(k)
		p.res[k] = &carEntry[K]{el: p.t2.PushBack(pg), where: inT2}
	default:
		p.res[k] = &carEntry[K]{el: p.t1.PushBack(pg), where: inT1}
	}
	p.trimGhosts()
}

// OnRemove retires a resident page into the matching ghost list.
func (p *car[K]) OnRemove(k K) {
	e, ok := p.res[k]
	if !ok {
		return
	}
	delete(p.res, k)
	if e.where == inT1 {
		p.t1.Remove(e.el)
		p.b1Idx[k] = p.b1.PushFront(k)
	} else {
		p.t2.Remove(e.el)
		p.b2Idx[k] = p.b2.PushFront(k)
	}
	p.trimGhosts()
}

// Victim runs the CAR replacement scan: referenced T1 heads migrate to
// the T2 tail (bit cleared), referenced T2 heads recycle to their own
// tail, and the first unreferenced head is proposed. The scan leaves
// the chosen page at its clock head for the engine to remove.
func (p *car[K]) Victim() (K, bool) {
	if len(p.res) == 0 {
		var zero K
		return zero, false
	}
	for {
		if p.t1.Len() >= max(1, p.p) {
			head := p.t1.Front()
			pg := head.Value.(*page[K])
			if !pg.ref {
				return pg.key, true
			}
			pg.ref = false
			p.t1.Remove(head)
			e := p.res[pg.key]
			e.el = p.t2.PushBack(pg)
			e.where = inT2
			continue
		}
		head := p.t2.Front()
		if head == nil {
			head = p.t1.Front()
			return head.Value.(*page[K]).key, true
		}
		pg := head.Value.(*page[K])
		if !pg.ref {
			return pg.key, true
		}
		pg.ref = false
		p.t2.MoveToBack(head)
	}
}

// Len returns the number of resident keys.
func (p *car[K]) Len() int { return len(p.res) }

func (p *car[K]) dropGhost(k K) {
	if el, ok := p.b1Idx[k]; ok {
		p.b1.Remove(el)
		delete(p.b1Idx, k)
	}
	if el, ok := p.b2Idx[k]; ok {
		p.b2.Remove(el)
		delete(p.b2Idx, k)
	}
}

// trimGhosts enforces |T1|+|B1| ≤ c and a 2c bound on the directory.
func (p *car[K]) trimGhosts() {
	for p.t1.Len()+p.b1.Len() > p.c && p.b1.Len() > 0 {
		tail := p.b1.Back()
		delete(p.b1Idx, tail.Value.(K))
		p.b1.Remove(tail)
	}
	for len(p.res)+p.b1.Len()+p.b2.Len() > 2*p.c {
		var tail *list.Element
		if p.b2.Len() > 0 {
			tail = p.b2.Back()
			delete(p.b2Idx, tail.Value.(K))
			p.b2.Remove(tail)
		} else if p.b1.Len() > 0 {
			tail = p.b1.Back()
			delete(p.b1Idx, tail.Value.(K))
			p.b1.Remove(tail)
		} else {
			return
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
