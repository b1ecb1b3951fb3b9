package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "arsip_desa"

// Cache operations reported by RecordCache.
const (
	CacheOpGet        = "get"
	CacheOpSet        = "set"
	CacheOpInvalidate = "invalidate"
)

// MetricsService encapsulates Prometheus instrumentation on a private registry.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheOps        *prometheus.CounterVec
	cacheDuration   *prometheus.HistogramVec
	storageOps      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
	uploadBytes     prometheus.Histogram
	reportExports   *prometheus.CounterVec
}

// NewMetricsService registers the HTTP, cache, storage and report collectors
// together with the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_operations_total",
			Help:      "Dashboard cache operations by kind and result",
		}, []string{"op", "result"}),
		cacheDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_operation_duration_seconds",
			Help:      "Latency of dashboard cache operations",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"op"}),
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "storage_operations_total",
			Help:      "Blob storage operations by backend, operation and result",
		}, []string{"backend", "op", "result"}),
		storageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Duration of blob storage operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "archive_upload_bytes",
			Help:      "Size of uploaded archive files",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
		}),
		reportExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "report_exports_total",
			Help:      "Rendered archive report exports by format",
		}, []string{"format"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration, m.requestTotal,
		m.cacheOps, m.cacheDuration,
		m.storageOps, m.storageDuration,
		m.uploadBytes, m.reportExports,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCache records one cache call. result is "hit", "miss", "ok" or "error".
func (m *MetricsService) RecordCache(op, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues(op, result).Inc()
	m.cacheDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveStorage records one blob storage call.
func (m *MetricsService) ObserveStorage(backend, op string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.storageOps.WithLabelValues(backend, op, resultLabel(err)).Inc()
	m.storageDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// ObserveUpload records the size of an accepted archive file.
func (m *MetricsService) ObserveUpload(size int64) {
	if m == nil {
		return
	}
	m.uploadBytes.Observe(float64(size))
}

// IncReportExport counts a rendered report.
func (m *MetricsService) IncReportExport(format string) {
	if m == nil {
		return
	}
	m.reportExports.WithLabelValues(format).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
