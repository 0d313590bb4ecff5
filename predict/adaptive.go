package predict

import "sort"

// Adaptive defaults; all overridable through AdaptiveConfig.
const (
	DefaultDecay        = 0.99
	DefaultCreditWindow = 32
	DefaultTopM         = 1
)

// AdaptiveConfig tunes the meta-predictor. Zero values select the
// documented defaults.
type AdaptiveConfig struct {
	// Decay is the per-access multiplicative decay γ applied to every
	// child score, in (0, 1].
	Decay float64
	// CreditWindow is how many subsequent accesses a prediction stays
	// eligible to score a hit.
	CreditWindow int
	// TopM is how many top-scored children are consulted for output.
	TopM int
	// Degree caps the candidates returned per Predict call.
	Degree int
}

func (c AdaptiveConfig) withDefaults() AdaptiveConfig {
	if c.Decay <= 0 || c.Decay > 1 {
		c.Decay = DefaultDecay
	}
	if c.CreditWindow < 1 {
		c.CreditWindow = DefaultCreditWindow
	}
	if c.TopM < 1 {
		c.TopM = DefaultTopM
	}
	if c.Degree <= 0 {
		c.Degree = DefaultDegree
	}
	return c
}

// Child names a sub-predictor inside the portfolio.
type Child[K comparable] struct {
	Name      string
	Predictor Predictor[K]
}

// pending is one in-flight prediction awaiting credit.
type pending[K comparable] struct {
	key     K
	child   int
	expires uint64 // logical access count after which the entry lapses
}

// Adaptive arbitrates a portfolio of sub-predictors. Every child sees
// the full event stream and is queried on every Predict call so its
// emissions enter the credit queue, but only the top-M children by
// score contribute to the returned candidates.
//
// A child's score is incremented when one of its predictions is
// requested by the client within the credit window and before the
// predicted entry is evicted; every access decays all scores by γ.
// Scores live here, never on the children.
type Adaptive[K comparable] struct {
	cfg      AdaptiveConfig
	children []Child[K]
	scores   []float64
	queue    []pending[K]
	tick     uint64
}

// NewAdaptive builds an arbiter over an explicit portfolio.
func NewAdaptive[K comparable](cfg AdaptiveConfig, children ...Child[K]) *Adaptive[K] {
	return &Adaptive[K]{
		cfg:      cfg.withDefaults(),
		children: children,
		scores:   make([]float64, len(children)),
	}
}

// NewAdaptiveDefault builds the standard portfolio — Sequential, Stride,
// Markov, and History — for integer-like keys.
func NewAdaptiveDefault[K Integer](cfg AdaptiveConfig) *Adaptive[K] {
	c := cfg.withDefaults()
	return NewAdaptive(c,
		Child[K]{Name: "sequential", Predictor: NewSequential[K]()},
		Child[K]{Name: "stride", Predictor: NewStride[K]()},
		Child[K]{Name: "markov", Predictor: NewMarkov[K](c.Degree)},
		Child[K]{Name: "history", Predictor: NewNGram[K](DefaultNGramWindow, c.Degree)},
	)
}

// OnAccess credits matching pending predictions, decays scores, and
// forwards the event to every child.
func (a *Adaptive[K]) OnAccess(k K) {
	a.settle(k)
	for _, c := range a.children {
		c.Predictor.OnAccess(k)
	}
}

// OnMiss behaves like OnAccess for scoring: a predicted key the client
// asks for counts as a hit for the child even if the cache missed it.
func (a *Adaptive[K]) OnMiss(k K) {
	a.settle(k)
	for _, c := range a.children {
		c.Predictor.OnMiss(k)
	}
}

// OnEvict cancels pending credit for a key that left the cache.
func (a *Adaptive[K]) OnEvict(k K) {
	kept := a.queue[:0]
	for _, p := range a.queue {
		if p.key != k {
			kept = append(kept, p)
		}
	}
	a.queue = kept
}

// Predict queries all children, enqueues their emissions for credit,
// and returns the union of the top-M children's candidates.
func (a *Adaptive[K]) Predict() []K {
	outs := make([][]K, len(a.children))
	for i, c := range a.children {
		outs[i] = c.Predictor.Predict()
		for _, k := range outs[i] {
			a.queue = append(a.queue, pending[K]{key: k, child: i, expires: a.tick + uint64(a.cfg.CreditWindow)})
		}
	}
	a.capQueue()

	var result []K
	emitted := make(map[K]struct{}, a.cfg.Degree)
	for _, i := range a.ranked()[:min(a.cfg.TopM, len(a.children))] {
		for _, k := range outs[i] {
			if _, dup := emitted[k]; dup {
				continue
			}
			if len(result) == a.cfg.Degree {
				return result
			}
			emitted[k] = struct{}{}
			result = append(result, k)
		}
	}
	return result
}

// Scores reports the current per-child scores by name.
func (a *Adaptive[K]) Scores() map[string]float64 {
	m := make(map[string]float64, len(a.children))
	for i, c := range a.children {
		m[c.Name] = a.scores[i]
	}
	return m
}

// settle advances logical time, decays scores, pays out credit for
// predictions matching k, and drops lapsed queue entries.
func (a *Adaptive[K]) settle(k K) {
	a.tick++
	for i := range a.scores {
		a.scores[i] *= a.cfg.Decay
	}
	kept := a.queue[:0]
	for _, p := range a.queue {
		switch {
		case p.key == k:
			a.scores[p.child]++
		case p.expires < a.tick:
			// lapsed
		default:
			kept = append(kept, p)
		}
	}
	a.queue = kept
}

// ranked returns child indices by descending score; earlier children
// win ties, so the portfolio order is a stable preference order.
func (a *Adaptive[K]) ranked() []int {
	idx := make([]int, len(a.children))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return a.scores[idx[i]] > a.scores[idx[j]]
	})
	return idx
}

// capQueue bounds the credit queue to window×degree entries per child,
// dropping the oldest predictions first.
func (a *Adaptive[K]) capQueue() {
	limit := a.cfg.CreditWindow * a.cfg.Degree * max(1, len(a.children))
	if n := len(a.queue) - limit; n > 0 {
		a.queue = append(a.queue[:0], a.queue[n:]...)
	}
}

var _ EvictionAware[int] = (*Adaptive[int])(nil)
