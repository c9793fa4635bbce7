// Package metrics exports request and invalidation counters to Prometheus.
package metrics

import (
	"context"
	"strconv"
	"time"

	"gudang/internal/invalidation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's Prometheus collectors.
type Recorder struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	invalidations *prometheus.CounterVec
}

// NewRecorder registers the collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gudang",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gudang",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gudang",
			Name:      "view_invalidations_total",
			Help:      "Invalidation signals emitted by mutation kind.",
		}, []string{"operation"}),
	}
	r.registry.MustRegister(
		r.requests,
		r.latency,
		r.invalidations,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Invalidate counts one signal. Recorder is an invalidation.Coordinator.
func (r *Recorder) Invalidate(_ context.Context, signal invalidation.Signal) {
	r.invalidations.WithLabelValues(string(signal.Operation)).Inc()
}

// Middleware records request counts and latency per matched route.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()
		r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		r.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
