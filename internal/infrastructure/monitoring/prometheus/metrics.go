// Package prometheus exposes engine and HTTP metrics on a dedicated
// registry.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "precedex"

var (
	defaultHTTPDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	defaultRecommendDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	defaultBuildDurationBuckets     = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300}
)

// Metrics holds the collectors for the strategy engine and the HTTP layer.
// It implements strategy.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	recommendDuration prometheus.Histogram
	buildDuration     prometheus.Histogram
	corpusSize        prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry so test
// instances never collide.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}))

	m := &Metrics{
		registry: registry,
		recommendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Duration of strategy recommendation requests.",
			Buckets:   defaultRecommendDurationBuckets,
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Duration of corpus graph builds.",
			Buckets:   defaultBuildDurationBuckets,
		}),
		corpusSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_cases",
			Help:      "Number of cases in the loaded corpus.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   defaultHTTPDurationBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		m.recommendDuration,
		m.buildDuration,
		m.corpusSize,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

func (m *Metrics) ObserveRecommend(seconds float64) {
	m.recommendDuration.Observe(seconds)
}

func (m *Metrics) ObserveBuild(seconds float64) {
	m.buildDuration.Observe(seconds)
}

func (m *Metrics) SetCorpusSize(n int) {
	m.corpusSize.Set(float64(n))
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test scrapes.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
