package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// background sweeps.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	sweepRuns       *prometheus.CounterVec
	sweepDeleted    *prometheus.CounterVec
	sweepFailures   *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	uploadBytes     prometheus.Counter
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

	sweepRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retention_sweep_runs_total",
		Help: "Total retention sweep executions",
	}, []string{"job"})

	sweepDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retention_sweep_deleted_total",
		Help: "Total rows removed by retention sweeps",
	}, []string{"job"})

	sweepFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retention_sweep_failures_total",
		Help: "Total retention sweep failures",
	}, []string{"job"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "upload_bytes_total",
		Help: "Total bytes accepted by the upload endpoints",
	})

	registry.MustRegister(requestDuration, requestTotal, sweepRuns, sweepDeleted, sweepFailures, cacheHits, cacheMisses, uploadBytes)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		sweepRuns:       sweepRuns,
		sweepDeleted:    sweepDeleted,
		sweepFailures:   sweepFailures,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		uploadBytes:     uploadBytes,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": httpStatusLabel(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveSweep records one sweep execution.
func (s *MetricsService) ObserveSweep(job string, deleted int64, err error) {
	s.sweepRuns.WithLabelValues(job).Inc()
	if err != nil {
		s.sweepFailures.WithLabelValues(job).Inc()
		return
	}
	s.sweepDeleted.WithLabelValues(job).Add(float64(deleted))
}

// RecordCacheLookup tracks cache hit/miss counts.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}

// RecordUpload accumulates accepted upload sizes.
func (s *MetricsService) RecordUpload(size int64) {
	if size > 0 {
		s.uploadBytes.Add(float64(size))
	}
}

func httpStatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
