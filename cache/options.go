package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roquess/fulgurance/policy"
	"github.com/roquess/fulgurance/predict"
)

// DefaultPrefetchDegree bounds speculative loads per access when
// Options.PrefetchDegree is left zero.
const DefaultPrefetchDegree = 1

// Loader fetches the value for a missing key. The engine calls it at
// most once per missing key per operation and never concurrently with
// itself. A Loader must not reenter the cache instance that invoked it.
type Loader[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Options configures the cache. Zero values are safe; defaults are
// applied in New:
//   - nil Policy    => LRU
//   - nil Predictor => no prefetching
//   - nil Metrics   => NoopMetrics
//   - PrefetchDegree <= 0 => DefaultPrefetchDegree
//
// Per-policy tuning (SLRU protected ratio, 2Q A1in ratio, random seed)
// and per-predictor tuning (Markov degree, N-gram window, adaptive
// decay/credit window) live on the respective constructors.
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be >= 1.
	Capacity int

	// Policy selects the eviction policy; nil => LRU.
	Policy policy.Policy[K]

	// Predictor observes the access stream and proposes prefetch
	// candidates; nil disables prefetching entirely.
	Predictor predict.Predictor[K]

	// Loader fetches values on miss. Used by GetOrLoad and by the
	// prefetch phase; with no Loader the predictor is never consulted.
	Loader Loader[K, V]

	// PrefetchDegree caps speculative loads per access.
	PrefetchDegree int

	// OnEvict is called for every capacity eviction (not for explicit
	// Remove), synchronously with the evicting operation; keep it light.
	OnEvict func(k K, v V)

	// Metrics receives hit/miss/prefetch/evict/size signals.
	Metrics Metrics

	// Logger receives debug diagnostics (prefetch loader failures).
	// Nil disables logging.
	Logger *zerolog.Logger
}
