package hint

import "github.com/prometheus/client_golang/prometheus"

// Stats is the per-PD statistics plumbing of C9. Aggregation/export
// beyond these raw counters and gauges is an explicit non-goal
// (spec.md §1 "statistics aggregation"); what lives here is the plumbing
// the core itself must touch on every satisfy/run/acquire so an external
// aggregator (Prometheus, in this reference) has something to scrape.
type Stats struct {
	EdtsCreated   prometheus.Counter
	EdtsRun       prometheus.Counter
	EdtsReaped    prometheus.Counter
	EventSatisfy  *prometheus.CounterVec // labeled by event kind
	EventDestroy  *prometheus.CounterVec
	FrontierWait  prometheus.Histogram // time spent acquiring a DB on the frontier
	DeferredDepth prometheus.Gauge
}

// NewStats registers a fresh set of collectors under reg, namespaced per
// policy domain so multiple PDs in one process (as in the single-process
// reference runtime) don't collide on metric names.
func NewStats(reg prometheus.Registerer, pdName string) *Stats {
	s := &Stats{
		EdtsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "edts_created_total",
		}),
		EdtsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "edts_run_total",
		}),
		EdtsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "edts_reaped_total",
		}),
		EventSatisfy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "event_satisfy_total",
		}, []string{"kind"}),
		EventDestroy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "event_destroy_total",
		}, []string{"kind"}),
		FrontierWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "frontier_acquire_seconds",
		}),
		DeferredDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ocr", Subsystem: pdName, Name: "deferred_chain_depth",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.EdtsCreated, s.EdtsRun, s.EdtsReaped, s.EventSatisfy,
			s.EventDestroy, s.FrontierWait, s.DeferredDepth)
	}
	return s
}

// Noop returns a Stats whose collectors are unregistered (not wired to
// any Registerer): useful for unit tests that don't want to share a
// global Prometheus default registry across parallel test packages.
func Noop() *Stats { return NewStats(nil, "test") }
