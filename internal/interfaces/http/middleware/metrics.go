package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"factura-scanner.backend/internal/domain/entities"
)

// Metrics holds the process-local Prometheus registry and the counters the
// service exposes on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	webhookTotal     *prometheus.CounterVec
	documentOutcomes *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facturas",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facturas",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	webhookTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facturas",
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Webhook deliveries by gate outcome.",
		},
		[]string{"outcome"},
	)
	documentOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facturas",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Documents leaving the pipeline by terminal status.",
		},
		[]string{"status"},
	)

	registry.MustRegister(requestTotal, requestDuration, webhookTotal, documentOutcomes)

	return &Metrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		webhookTotal:     webhookTotal,
		documentOutcomes: documentOutcomes,
	}
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes every request's status and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		m.requestTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordWebhookOutcome counts one delivery's gate result.
func (m *Metrics) RecordWebhookOutcome(outcome string) {
	m.webhookTotal.WithLabelValues(outcome).Inc()
}

// RecordDocumentOutcome counts one document's terminal status.
func (m *Metrics) RecordDocumentOutcome(status entities.DocumentStatus) {
	m.documentOutcomes.WithLabelValues(string(status)).Inc()
}
