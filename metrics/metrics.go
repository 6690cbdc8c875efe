// Package metrics exports relay run activity as Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ proofread.Observer = (*Metrics)(nil)

// Publish outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics groups the Prometheus instruments of the relay. It implements
// proofread.Observer.
type Metrics struct {
	RunsActive  prometheus.Gauge
	Publishes   *prometheus.CounterVec
	Results     *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

// New registers the instruments with reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Number of corrections currently streaming.",
		}),
		Publishes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Streaming display updates by outcome.",
		}, []string{"outcome"}),
		Results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Finished runs by result kind.",
		}, []string{"kind"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time from run start to terminal publish.",
			Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 30, 45},
		}),
	}
}

// RunStarted implements proofread.Observer.
func (m *Metrics) RunStarted() {
	m.RunsActive.Inc()
}

// Published implements proofread.Observer.
func (m *Metrics) Published(err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	m.Publishes.WithLabelValues(outcome).Inc()
}

// RunFinished implements proofread.Observer.
func (m *Metrics) RunFinished(r proofread.Result, elapsed time.Duration) {
	m.RunsActive.Dec()
	m.Results.WithLabelValues(string(r.Kind())).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
