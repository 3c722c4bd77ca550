// Package metrics provides Prometheus metrics for the study service
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Viewer state metrics
	StateWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_state_writes_total",
			Help: "Persisted view and camera state writes",
		},
		[]string{"kind"},
	)

	StateRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "study_state_corrupt_total",
			Help: "Stored states that failed to decode and were replaced by defaults",
		},
	)

	// Assistant metrics
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_assistant_requests_total",
			Help: "Assistant questions by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	AssistantDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_assistant_duration_seconds",
			Help:    "Time taken to answer a question",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// Export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_exports_total",
			Help: "PDF exports by outcome",
		},
		[]string{"status"},
	)
)

// Middleware records request counts and latency per route pattern.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RecordAssistant records one assistant call.
func RecordAssistant(provider string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AssistantRequests.WithLabelValues(provider, status).Inc()
	AssistantDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
