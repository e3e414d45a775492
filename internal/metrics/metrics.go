package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskhub"

// Metrics holds the Prometheus collectors for the HTTP layer and the
// suggestion engine.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	RequestDuration *prometheus.HistogramVec
	RequestCount    *prometheus.CounterVec

	// Suggestions
	SuggestionDuration *prometheus.HistogramVec
	SuggestionCount    *prometheus.CounterVec
	SuggestionsServed  *prometheus.HistogramVec
	CorpusSize         prometheus.Gauge
	DegradedCount      prometheus.Counter
}

// New registers every collector on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RequestCount: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		SuggestionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "suggest",
				Name:      "operation_duration_seconds",
				Help:      "Duration of suggestion operations in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		SuggestionCount: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "suggest",
				Name:      "operation_total",
				Help:      "Total number of suggestion operations",
			},
			[]string{"operation", "status"},
		),
		SuggestionsServed: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "suggest",
				Name:      "results",
				Help:      "Number of suggestions or clusters returned per operation",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50, 100},
			},
			[]string{"operation"},
		),
		CorpusSize: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "suggest",
				Name:      "corpus_tasks",
				Help:      "Number of tasks in the most recent suggestion snapshot",
			},
		),
		DegradedCount: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "suggest",
				Name:      "degraded_total",
				Help:      "Combined suggestions served without the completion-time signal",
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSuggestion records one suggestion operation. status is "ok" or an
// error class.
func (m *Metrics) ObserveSuggestion(operation, status string, results int, d time.Duration) {
	if m == nil {
		return
	}
	m.SuggestionDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.SuggestionCount.WithLabelValues(operation, status).Inc()
	if status == "ok" {
		m.SuggestionsServed.WithLabelValues(operation).Observe(float64(results))
	}
}

func (m *Metrics) ObserveCorpus(n int) {
	if m == nil {
		return
	}
	m.CorpusSize.Set(float64(n))
}

func (m *Metrics) Degraded() {
	if m == nil {
		return
	}
	m.DegradedCount.Inc()
}

// Middleware records request counts and latency labelled by the matched chi
// route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
