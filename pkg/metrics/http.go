package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics records request metadata for the API surface.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	checkoutTotal   *prometheus.CounterVec
}

// NewHTTPMetrics registers the API metrics on a fresh registry.
func NewHTTPMetrics() *HTTPMetrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "route", "status"})
	checkoutTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})

	registry.MustRegister(requestDuration, requestTotal, checkoutTotal)

	return &HTTPMetrics{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		checkoutTotal:   checkoutTotal,
	}
}

// ObserveRequest records a completed HTTP request.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	labels := []string{method, normalizeLabel(route), strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// IncCheckout increments the checkout counter for the given outcome.
func (m *HTTPMetrics) IncCheckout(outcome string) {
	if m == nil || m.checkoutTotal == nil {
		return
	}
	m.checkoutTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (m *HTTPMetrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
