package predict

// none never predicts. It is the default predictor: a cache built with
// it behaves like a plain policy cache.
type none[K comparable] struct{}

// NewNone returns a predictor that always emits the empty sequence.
func NewNone[K comparable]() Predictor[K] { return none[K]{} }

func (none[K]) OnAccess(K)   {}
func (none[K]) OnMiss(K)     {}
func (none[K]) Predict() []K { return nil }
