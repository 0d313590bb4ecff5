// Command bench runs a synthetic workload against the cache and exposes
// optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roquess/fulgurance/cache"
	"github.com/roquess/fulgurance/metrics/prom"
	"github.com/roquess/fulgurance/policy"
	"github.com/roquess/fulgurance/policy/arc"
	"github.com/roquess/fulgurance/policy/car"
	"github.com/roquess/fulgurance/policy/clock"
	"github.com/roquess/fulgurance/policy/fifo"
	"github.com/roquess/fulgurance/policy/lfu"
	"github.com/roquess/fulgurance/policy/lru"
	"github.com/roquess/fulgurance/policy/mru"
	"github.com/roquess/fulgurance/policy/random"
	"github.com/roquess/fulgurance/policy/slru"
	"github.com/roquess/fulgurance/policy/twoq"
	"github.com/roquess/fulgurance/predict"
	"github.com/roquess/fulgurance/sharded"
)

func main() {
	var (
		capacity  = flag.Int("cap", 100_000, "cache capacity (entries)")
		shards    = flag.Int("shards", 0, "number of shards (0=auto)")
		policyArg = flag.String("policy", "lru", "eviction policy: lru|mru|fifo|lfu|random|clock|arc|2q|slru|car")
		predArg   = flag.String("predictor", "none", "prefetch predictor: none|sequential|stride|markov|history|adaptive")
		workload  = flag.String("workload", "zipf", "key pattern: zipf|seq|stride")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		listen = flag.String("listen", "", "address for /metrics and pprof (empty = disabled)")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	opt := cache.Options[int, string]{
		Capacity:  *capacity,
		Policy:    pickPolicy(*policyArg),
		Predictor: pickPredictor(*predArg),
		Logger:    &log,
		Loader: func(_ context.Context, k int) (string, error) {
			return strconv.Itoa(k), nil
		},
	}
	if *listen != "" {
		opt.Metrics = prom.New(nil, "fulgurance", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*listen, nil); err != nil {
				log.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	c, err := sharded.New(sharded.Options[int, string]{Shards: *shards, Cache: opt})
	if err != nil {
		log.Fatal().Err(err).Msg("cache construction failed")
	}
	defer func() { _ = c.Close() }()

	log.Info().
		Str("policy", *policyArg).
		Str("predictor", *predArg).
		Str("workload", *workload).
		Int("capacity", *capacity).
		Int("workers", *workers).
		Msg("starting")

	var ops atomic.Int64
	ctx := context.Background()
	deadline := time.Now().Add(*duration)

	var wg sync.WaitGroup
	wg.Add(*workers)
	for w := 0; w < *workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(*seed + int64(id)*9973))
			zipf := rand.NewZipf(r, *zipfS, 1.0, uint64(*keys-1))
			i := 0
			for time.Now().Before(deadline) {
				var k int
				switch *workload {
				case "seq":
					k = i % *keys
				case "stride":
					k = (i * 4) % *keys
				default:
					k = int(zipf.Uint64())
				}
				if _, err := c.GetOrLoad(ctx, k); err != nil {
					log.Error().Err(err).Int("key", k).Msg("load failed")
					return
				}
				ops.Add(1)
				i++
			}
		}(w)
	}
	wg.Wait()

	m := c.Metrics()
	total := m.Hits + m.Misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(m.Hits) / float64(total)
	}
	log.Info().
		Int64("ops", ops.Load()).
		Uint64("hits", m.Hits).
		Uint64("misses", m.Misses).
		Uint64("prefetch_hits", m.PrefetchHits).
		Uint64("prefetch_issued", m.PrefetchIssued).
		Uint64("evictions", m.Evictions).
		Msg("done")
	fmt.Printf("ops=%d hit_rate=%.3f ops/sec=%.0f\n",
		ops.Load(), hitRate, float64(ops.Load())/duration.Seconds())
}

func pickPolicy(name string) policy.Policy[int] {
	switch name {
	case "mru":
		return mru.New[int]()
	case "fifo":
		return fifo.New[int]()
	case "lfu":
		return lfu.New[int]()
	case "random":
		return random.New[int]()
	case "clock":
		return clock.New[int]()
	case "arc":
		return arc.New[int]()
	case "2q":
		return twoq.New[int]()
	case "slru":
		return slru.New[int]()
	case "car":
		return car.New[int]()
	default:
		return lru.New[int]()
	}
}

func pickPredictor(name string) predict.Predictor[int] {
	switch name {
	case "sequential":
		return predict.NewSequential[int]()
	case "stride":
		return predict.NewStride[int]()
	case "markov":
		return predict.NewMarkov[int](predict.DefaultDegree)
	case "history":
		return predict.NewNGram[int](predict.DefaultNGramWindow, predict.DefaultDegree)
	case "adaptive":
		return predict.NewAdaptiveDefault[int](predict.AdaptiveConfig{})
	default:
		return predict.NewNone[int]()
	}
}
