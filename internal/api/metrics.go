package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/docspell/internal/pipeline"
)

// Metrics holds the check counters. Each Server owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	mistakes      prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docspell",
			Name:      "checks_total",
			Help:      "Documents checked, by outcome.",
		}, []string{"status"}),
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docspell",
			Name:      "check_duration_seconds",
			Help:      "Time to parse and check one document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		mistakes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docspell",
			Name:      "mistakes_per_check",
			Help:      "Spelling mistakes reported per checked document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
	}
}

func (m *Metrics) observe(res *pipeline.Result, format string, seconds float64) {
	m.checksTotal.WithLabelValues(string(res.Status)).Inc()
	m.checkDuration.WithLabelValues(format).Observe(seconds)
	if res.Status != pipeline.StatusFailed {
		m.mistakes.Observe(float64(len(res.Findings)))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
