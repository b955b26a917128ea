package evaluator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sandrolain/gorule/pkg/types"
)

// Metrics holds Prometheus collectors for rule evaluation. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	evaluations  *prometheus.CounterVec
	errors       *prometheus.CounterVec
	duration     prometheus.Histogram
	batchSize    prometheus.Histogram
	cacheLookups *prometheus.CounterVec
}

// NewMetrics creates the evaluator collectors and registers them with reg.
// It returns nil when reg is nil. Registering twice with the same registry
// panics, as with any Prometheus collector.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorule",
			Subsystem: "evaluator",
			Name:      "evaluations_total",
			Help:      "Rule evaluations by outcome (true, false, value, error).",
		}, []string{"result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorule",
			Subsystem: "evaluator",
			Name:      "errors_total",
			Help:      "Failed rule evaluations by error kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gorule",
			Subsystem: "evaluator",
			Name:      "duration_seconds",
			Help:      "Time spent evaluating a single rule against a single record.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gorule",
			Subsystem: "evaluator",
			Name:      "batch_size",
			Help:      "Number of records per EvalBatch call.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorule",
			Subsystem: "evaluator",
			Name:      "cache_lookups_total",
			Help:      "Rule cache lookups by outcome (hit, miss).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.evaluations, m.errors, m.duration, m.batchSize, m.cacheLookups)
	return m
}

func (m *Metrics) observe(v types.Value, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
	switch {
	case err != nil:
		m.evaluations.WithLabelValues("error").Inc()
		kind := types.CodeOf(err).Kind()
		m.errors.WithLabelValues(kind).Inc()
	case v == types.Boolean(true):
		m.evaluations.WithLabelValues("true").Inc()
	case v == types.Boolean(false):
		m.evaluations.WithLabelValues("false").Inc()
	default:
		m.evaluations.WithLabelValues("value").Inc()
	}
}

func (m *Metrics) observeBatch(n int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(n))
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}
