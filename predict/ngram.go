package predict

import (
	"fmt"
	"strings"
)

// DefaultNGramWindow is the default context window N: predictions
// condition on the last N−1 keys.
const DefaultNGramWindow = 3

// ngram is a history-based predictor conditioning on the last N−1 keys.
// It keeps one transition table per context length 1..N−1 and, when the
// full-length context is unseen, falls back to progressively shorter
// suffixes of the history.
type ngram[K comparable] struct {
	n      int
	degree int
	tables []map[string]*row[K] // tables[l-1] keyed by encoded l-suffix
	hist   []K                  // last n-1 keys, oldest first
	tick   uint64
}

// NewNGram returns an N-gram history predictor with the given window
// (DefaultNGramWindow when n < 2) emitting up to degree candidates.
func NewNGram[K comparable](n, degree int) Predictor[K] {
	if n < 2 {
		n = DefaultNGramWindow
	}
	if degree <= 0 {
		degree = DefaultDegree
	}
	tables := make([]map[string]*row[K], n-1)
	for i := range tables {
		tables[i] = make(map[string]*row[K])
	}
	return &ngram[K]{n: n, degree: degree, tables: tables}
}

func (g *ngram[K]) OnAccess(k K) { g.observe(k) }
func (g *ngram[K]) OnMiss(k K)   { g.observe(k) }

func (g *ngram[K]) observe(k K) {
	g.tick++
	// Record k as the successor of every suffix of the current history.
	for l := 1; l <= len(g.hist); l++ {
		ctx := encode(g.hist[len(g.hist)-l:])
		t := g.tables[l-1]
		r := t[ctx]
		if r == nil {
			r = &row[K]{counts: make(map[K]uint64), stamps: make(map[K]uint64)}
			t[ctx] = r
		}
		r.counts[k]++
		r.stamps[k] = g.tick
	}
	g.hist = append(g.hist, k)
	if len(g.hist) > g.n-1 {
		g.hist = g.hist[1:]
	}
}

// Predict looks up the longest known suffix of the history and returns
// its most frequent successors.
func (g *ngram[K]) Predict() []K {
	for l := len(g.hist); l >= 1; l-- {
		ctx := encode(g.hist[len(g.hist)-l:])
		if r := g.tables[l-1][ctx]; r != nil {
			return r.top(g.degree)
		}
	}
	return nil
}

// encode flattens a key sequence into a map key. The unit separator
// keeps adjacent keys from running together.
func encode[K comparable](keys []K) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%v\x1f", k)
	}
	return b.String()
}
