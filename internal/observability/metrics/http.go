package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	batchesSubmittedTotal *prometheus.CounterVec
	batchDocuments        *prometheus.HistogramVec
	detectionTotal        *prometheus.CounterVec
	detectionDuration     *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veridoc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "veridoc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "veridoc",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchesSubmittedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veridoc",
			Subsystem: "batches",
			Name:      "submitted_total",
			Help:      "Total accepted analysis batches by analysis type.",
		},
		[]string{"service", "analysis_type"},
	)
	batchDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "veridoc",
			Subsystem: "batches",
			Name:      "documents",
			Help:      "Distribution of documents per submitted batch.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
		[]string{"service"},
	)
	detectionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veridoc",
			Subsystem: "detection",
			Name:      "requests_total",
			Help:      "Total ad-hoc AI detection requests by provider and status.",
		},
		[]string{"service", "provider", "status"},
	)
	detectionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "veridoc",
			Subsystem: "detection",
			Name:      "duration_seconds",
			Help:      "Ad-hoc AI detection duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "provider"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		batchesSubmittedTotal,
		batchDocuments,
		detectionTotal,
		detectionDuration,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		batchesSubmittedTotal: batchesSubmittedTotal,
		batchDocuments:        batchDocuments,
		detectionTotal:        detectionTotal,
		detectionDuration:     detectionDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/batches/") && strings.HasSuffix(path, "/results"):
		return "/api/v1/batches/{batch_id}/results"
	case strings.HasPrefix(path, "/api/v1/batches/"):
		return "/api/v1/batches/{batch_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordBatchSubmitted(service, analysisType string, documents int) {
	if analysisType == "" {
		analysisType = "unknown"
	}
	m.batchesSubmittedTotal.WithLabelValues(service, analysisType).Inc()
	if documents > 0 {
		m.batchDocuments.WithLabelValues(service).Observe(float64(documents))
	}
}

func (m *HTTPServerMetrics) RecordDetection(service, provider string, duration time.Duration, err error) {
	if provider == "" {
		provider = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.detectionTotal.WithLabelValues(service, provider, status).Inc()
	m.detectionDuration.WithLabelValues(service, provider).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
