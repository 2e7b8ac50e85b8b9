// Package metrics collects and exposes Prometheus metrics for the HTTP
// surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers per-request counters and latencies.
type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	inFlight        prometheus.Gauge
	uploadsTotal    prometheus.Counter
	uploadsRejected prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patientservice_requests_total",
			Help: "HTTP requests by method, path and status code",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "patientservice_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "patientservice_requests_in_flight",
			Help: "Number of requests currently being served",
		}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patientservice_attachment_uploads_total",
			Help: "Attachment uploads accepted by the sink",
		}),
		uploadsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patientservice_attachment_uploads_rejected_total",
			Help: "Attachment uploads rejected by the type filter",
		}),
	}

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.inFlight,
		c.uploadsTotal,
		c.uploadsRejected,
	)

	return c
}

// RecordRequest records one served request.
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// RecordUpload records one accepted attachment upload.
func (c *Collector) RecordUpload() {
	c.uploadsTotal.Inc()
}

// RecordUploadRejected records one upload refused by the type filter.
func (c *Collector) RecordUploadRejected() {
	c.uploadsRejected.Inc()
}

// Handler exposes the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware returns an echo middleware that records every request.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			c.inFlight.Inc()

			err := next(ctx)

			c.inFlight.Dec()
			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			c.RecordRequest(ctx.Request().Method, ctx.Path(), status, time.Since(start))

			return err
		}
	}
}
