package predict

import (
	"math"
	"sort"
)

// markov is a first-order Markov predictor. It counts observed key
// transitions prev→next and predicts the most frequent successors of
// the latest key, most recently observed first on equal counts.
type markov[K comparable] struct {
	degree int
	rows   map[K]*row[K]
	last   K
	seen   bool
	tick   uint64
}

// row accumulates successor statistics for one predecessor key.
type row[K comparable] struct {
	counts map[K]uint64
	stamps map[K]uint64 // logical time of the latest observation
}

// NewMarkov returns a first-order transition predictor emitting up to
// degree candidates per call (DefaultDegree when degree <= 0).
func NewMarkov[K comparable](degree int) Predictor[K] {
	if degree <= 0 {
		degree = DefaultDegree
	}
	return &markov[K]{degree: degree, rows: make(map[K]*row[K])}
}

func (m *markov[K]) OnAccess(k K) { m.observe(k) }
func (m *markov[K]) OnMiss(k K)   { m.observe(k) }

func (m *markov[K]) observe(k K) {
	m.tick++
	if m.seen {
		r := m.rows[m.last]
		if r == nil {
			r = &row[K]{counts: make(map[K]uint64), stamps: make(map[K]uint64)}
			m.rows[m.last] = r
		}
		if r.counts[k] < math.MaxUint64 {
			r.counts[k]++
		}
		r.stamps[k] = m.tick
	}
	m.last = k
	m.seen = true
}

func (m *markov[K]) Predict() []K {
	if !m.seen {
		return nil
	}
	r := m.rows[m.last]
	if r == nil {
		return nil
	}
	return r.top(m.degree)
}

// top returns the up-to-n successors ranked by count, breaking ties
// toward the most recently observed transition.
func (r *row[K]) top(n int) []K {
	keys := make([]K, 0, len(r.counts))
	for k := range r.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := r.counts[keys[i]], r.counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return r.stamps[keys[i]] > r.stamps[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
