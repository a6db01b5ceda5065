package hxevent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Callback outcomes.
const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeUnsupported = "unsupported"
	outcomeRejected    = "rejected"
)

type metrics struct {
	pages     prometheus.GaugeFunc
	callbacks *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	renders   prometheus.Counter
}

// newMetrics creates the registry collectors and registers them with reg.
// A nil registerer leaves them unregistered, so several registries can live
// in one process (tests) without colliding.
func newMetrics(reg prometheus.Registerer, store PageStore) *metrics {
	m := &metrics{
		pages: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "hxevent",
				Name:      "pages_stored",
				Help:      "Number of pages held by the page store",
			},
			func() float64 { return float64(store.Len()) },
		),
		callbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hxevent",
				Name:      "callbacks_total",
				Help:      "Ajax callbacks by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hxevent",
				Name:      "callback_duration_seconds",
				Help:      "Duration of Ajax callbacks in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event", "outcome"},
		),
		renders: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hxevent",
				Name:      "page_renders_total",
				Help:      "Full page renders",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.pages, m.callbacks, m.duration, m.renders)
	}
	return m
}

// callback records one finished callback.
func (m *metrics) callback(event, outcome string, start time.Time) {
	m.callbacks.WithLabelValues(event, outcome).Inc()
	m.duration.WithLabelValues(event, outcome).Observe(time.Since(start).Seconds())
}
