package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Generation metrics
	GenerationsTotal  *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
	RateLimitRejected prometheus.Counter
	QuotaRejected     prometheus.Counter
}

// New creates a Metrics instance registered on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generations_total",
				Help: "Total number of generation requests by type and outcome",
			},
			[]string{"type", "outcome"}, // outcome: success, upstream_error, timeout
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_call_duration_seconds",
				Help:    "Generation engine call duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 180, 240, 300},
			},
			[]string{"type"},
		),
		RateLimitRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the per-user rate limiter",
		}),
		QuotaRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Requests rejected because the plan quota was exhausted",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not raw path

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	}
}

// RecordGeneration records the outcome of one generation request
func (m *Metrics) RecordGeneration(generationType, outcome string, upstreamDuration time.Duration) {
	m.GenerationsTotal.WithLabelValues(generationType, outcome).Inc()
	if upstreamDuration > 0 {
		m.UpstreamDuration.WithLabelValues(generationType).Observe(upstreamDuration.Seconds())
	}
}
