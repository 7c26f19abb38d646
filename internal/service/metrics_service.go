package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	snapshotLookups *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	snapshotLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_snapshot_lookups_total",
		Help: "Calendar snapshot cache lookups by outcome",
	}, []string{"outcome"})

	registry.MustRegister(requestDuration, requestTotal, snapshotLookups)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		snapshotLookups: snapshotLookups,
	}
}

// ObserveHTTPRequest records one finished HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveSnapshotLookup counts a calendar snapshot cache hit or miss.
func (s *MetricsService) ObserveSnapshotLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	s.snapshotLookups.WithLabelValues(outcome).Inc()
}

// Handler exposes the scrape endpoint for this registry.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}
