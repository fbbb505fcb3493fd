package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the platform's domain instruments on a dedicated
// registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	votesCast     *prometheus.CounterVec
	payments      *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	fraudFlags    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evoting_votes_cast_total",
			Help: "Votes successfully recorded.",
		}, []string{"event_id"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evoting_payments_total",
			Help: "Payment settlements by terminal status.",
		}, []string{"status"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evoting_webhook_events_total",
			Help: "Gateway webhook deliveries by outcome.",
		}, []string{"result"}),
		fraudFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evoting_fraud_flags_total",
			Help: "Payments flagged by the fraud heuristics.",
		}, []string{"flag"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evoting_http_requests_total",
			Help: "Inbound HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evoting_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.votesCast,
		m.payments,
		m.webhookEvents,
		m.fraudFlags,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) RecordVoteCast(eventID string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(eventID).Inc()
}

func (m *Metrics) RecordPayment(status string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordWebhookEvent(result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordFraudFlag(flag string) {
	if m == nil || flag == "" {
		return
	}
	m.fraudFlags.WithLabelValues(flag).Inc()
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
