// Package metrics exports cache events to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/infodht/nightapi/types"
)

var _ types.Metrics = (*Prometheus)(nil)

// Prometheus implements types.Metrics with Prometheus counters.
type Prometheus struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Expired   prometheus.Counter
	Evictions prometheus.Counter
	Sets      prometheus.Counter
	Deletes   prometheus.Counter
	Failures  *prometheus.CounterVec
}

// NewPrometheus registers the cache counters on reg under namespace.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache reads that found a live entry",
		}),
		Misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache reads that found no live entry",
		}),
		Expired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "expired_total",
			Help:      "Total number of expired entries purged on read",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total number of entries evicted for capacity",
		}),
		Sets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "sets_total",
			Help:      "Total number of successful cache writes",
		}),
		Deletes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "deletes_total",
			Help:      "Total number of entries removed by delete, pattern delete or flush",
		}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "failures_total",
			Help:      "Total number of cache operations that failed open, by operation",
		}, []string{"op"}),
	}
}

// RegisterSize exposes the live entry count of a cache as a gauge.
func RegisterSize(reg prometheus.Registerer, namespace string, size func() int) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Current number of held cache entries, including expired entries not yet purged",
	}, func() float64 { return float64(size()) })
}

func (m *Prometheus) Hit()      { m.Hits.Inc() }
func (m *Prometheus) Miss()     { m.Misses.Inc() }
func (m *Prometheus) Expire()   { m.Expired.Inc() }
func (m *Prometheus) Eviction() { m.Evictions.Inc() }
func (m *Prometheus) Set()      { m.Sets.Inc() }

func (m *Prometheus) Delete(n int) {
	if n > 0 {
		m.Deletes.Add(float64(n))
	}
}

func (m *Prometheus) Failure(op string) {
	m.Failures.WithLabelValues(op).Inc()
}
