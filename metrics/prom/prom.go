// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roquess/fulgurance/cache"
)

// Adapter implements cache.Metrics backed by Prometheus collectors.
// Safe for concurrent use; all Prometheus metric types are
// goroutine-safe, so one Adapter may serve every shard of a sharded
// cache.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	prefHits   prometheus.Counter
	prefIssued prometheus.Counter
	evicts     prometheus.Counter
	sizeEnt    prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register with (nil => DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:       counter("hits_total", "Cache hits"),
		misses:     counter("misses_total", "Cache misses"),
		prefHits:   counter("prefetch_hits_total", "Prefetched entries later hit by a client"),
		prefIssued: counter("prefetch_issued_total", "Speculative loads issued"),
		evicts:     counter("evictions_total", "Capacity evictions"),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.prefHits, a.prefIssued, a.evicts, a.sizeEnt)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// PrefetchHit increments the prefetch-hit counter.
func (a *Adapter) PrefetchHit() { a.prefHits.Inc() }

// PrefetchIssued increments the speculative-load counter.
func (a *Adapter) PrefetchIssued() { a.prefIssued.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Size updates the resident-entries gauge.
//
// With a sharded cache each shard reports its own size; the gauge then
// reflects the size of whichever shard reported last, so prefer the
// Snapshot aggregation for exact totals.
func (a *Adapter) Size(entries int) { a.sizeEnt.Set(float64(entries)) }

// Compile-time check: Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
