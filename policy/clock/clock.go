// Package clock implements the CLOCK (second-chance) eviction policy.
//
// Entries live in a circular buffer of slots carrying a reference bit.
// An access sets the bit; the victim scan advances a hand, clearing set
// bits, until it lands on a clear slot.
package clock

import "github.com/roquess/fulgurance/policy"

type slot[K comparable] struct {
	key  K
	ref  bool
	used bool
}

type clock[K comparable] struct {
	buf  []slot[K]
	free []int // indices of vacated slots, reused before growing buf
	idx  map[K]int
	hand int
	n    int
}

type clockPolicy[K comparable] struct{}

// New returns a Policy factory that constructs per-cache CLOCK instances.
func New[K comparable]() policy.Policy[K] { return clockPolicy[K]{} }

func (clockPolicy[K]) New(capacity int) policy.Instance[K] {
	return &clock[K]{
		buf: make([]slot[K], 0, capacity),
		idx: make(map[K]int, capacity),
	}
}

// OnAccess sets the slot's reference bit.
func (p *clock[K]) OnAccess(k K) {
	if i, ok := p.idx[k]; ok {
		p.buf[i].ref = true
	}
}

// OnInsert places the key in a vacant slot (or appends one), with the
// reference bit clear.
func (p *clock[K]) OnInsert(k K) {
	var i int
	if n := len(p.free); n > 0 {
		i = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		i = len(p.buf)
		p.buf = append(p.buf, slot[K]{})
	}
	p.buf[i] = slot[K]{key: k, used: true}
	p.idx[k] = i
	p.n++
}

// OnRemove vacates the key's slot; the slot index is recycled.
func (p *clock[K]) OnRemove(k K) {
	i, ok := p.idx[k]
	if !ok {
		return
	}
	p.buf[i].used = false
	p.buf[i].ref = false
	p.free = append(p.free, i)
	delete(p.idx, k)
	p.n--
}

// Victim advances the hand, giving referenced slots a second chance,
// and proposes the first unreferenced occupied slot. The hand stays on
// the chosen slot so the next scan resumes there.
func (p *clock[K]) Victim() (K, bool) {
	if p.n == 0 {
		var zero K
		return zero, false
	}
	for {
		if p.hand >= len(p.buf) {
			p.hand = 0
		}
		s := &p.buf[p.hand]
		if !s.used {
			p.hand++
			continue
		}
		if s.ref {
			s.ref = false
			p.hand++
			continue
		}
		return s.key, true
	}
}

// Len returns the number of tracked keys.
func (p *clock[K]) Len() int { return p.n }
