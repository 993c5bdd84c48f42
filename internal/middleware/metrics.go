package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the HTTP surface and the risk engine.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInProgress prometheus.Gauge
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	ReviewsTotal       *prometheus.CounterVec
}

// NewMetrics registers every collector on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carbon_audit_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carbon_audit_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"route", "method"}),
		RequestsInProgress: f.NewGauge(prometheus.GaugeOpts{
			Name: "carbon_audit_http_requests_in_progress",
			Help: "HTTP requests currently being served",
		}),
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carbon_audit_analyses_total",
			Help: "Completed submission analyses by overall risk level",
		}, []string{"risk_level"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carbon_audit_analysis_duration_seconds",
			Help:    "Duration of a full analysis including the simulated processing delay",
			Buckets: []float64{0.1, 0.5, 1, 1.5, 2, 3, 5},
		}),
		ReviewsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carbon_audit_reviews_total",
			Help: "Reviewer decisions by decision",
		}, []string{"decision"}),
	}
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(level string, d time.Duration) {
	m.AnalysesTotal.WithLabelValues(level).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

// ObserveReview records one reviewer decision.
func (m *Metrics) ObserveReview(decision string) {
	m.ReviewsTotal.WithLabelValues(decision).Inc()
}

// Middleware tracks request metrics, labelled by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInProgress.Inc()
		defer m.RequestsInProgress.Dec()

		start := time.Now()
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
