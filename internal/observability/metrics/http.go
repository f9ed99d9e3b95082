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

	applicationsCreatedTotal *prometheus.CounterVec
	documentsSubmittedTotal  *prometheus.CounterVec
	decisionsTotal           *prometheus.CounterVec
	leadsCapturedTotal       *prometheus.CounterVec
	checkoutsTotal           *prometheus.CounterVec
	rateLimitedTotal         *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "permitflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "permitflow",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	applicationsCreatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "applications",
			Name:      "created_total",
			Help:      "Total permit applications created.",
		},
		[]string{"service", "permit_type", "project_type"},
	)
	documentsSubmittedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "documents",
			Name:      "submitted_total",
			Help:      "Total documents submitted, including resubmissions.",
		},
		[]string{"service", "category"},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "applications",
			Name:      "decisions_total",
			Help:      "Total final application decisions.",
		},
		[]string{"service", "decision"},
	)
	leadsCapturedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "crm",
			Name:      "leads_captured_total",
			Help:      "Total leads and quick quotes captured.",
		},
		[]string{"service", "kind"},
	)
	checkoutsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "payments",
			Name:      "checkouts_total",
			Help:      "Total checkout sessions by outcome.",
		},
		[]string{"service", "status"},
	)
	rateLimitedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permitflow",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		applicationsCreatedTotal,
		documentsSubmittedTotal,
		decisionsTotal,
		leadsCapturedTotal,
		checkoutsTotal,
		rateLimitedTotal,
	)

	return &HTTPServerMetrics{
		registry:                 registry,
		requestTotal:             requestTotal,
		requestDuration:          requestDuration,
		requestInFlight:          requestInFlight,
		applicationsCreatedTotal: applicationsCreatedTotal,
		documentsSubmittedTotal:  documentsSubmittedTotal,
		decisionsTotal:           decisionsTotal,
		leadsCapturedTotal:       leadsCapturedTotal,
		checkoutsTotal:           checkoutsTotal,
		rateLimitedTotal:         rateLimitedTotal,
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

// normalizePath collapses resource identifiers so the path label stays low
// cardinality.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		switch {
		case strings.HasPrefix(segment, "PERMIT-"):
			segments[i] = "{application_id}"
		case strings.HasPrefix(segment, "DOC-"):
			segments[i] = "{document_id}"
		case strings.HasPrefix(segment, "LEAD-"):
			segments[i] = "{lead_id}"
		case strings.HasPrefix(segment, "QUOTE-"):
			segments[i] = "{quote_id}"
		case strings.HasPrefix(segment, "PAY-"):
			segments[i] = "{payment_id}"
		}
	}
	return strings.Join(segments, "/")
}

func (m *HTTPServerMetrics) RecordApplicationCreated(service, permitType, projectType string) {
	m.applicationsCreatedTotal.WithLabelValues(service, permitType, projectType).Inc()
}

func (m *HTTPServerMetrics) RecordDocumentSubmitted(service, category string) {
	m.documentsSubmittedTotal.WithLabelValues(service, category).Inc()
}

func (m *HTTPServerMetrics) RecordDecision(service, decision string) {
	m.decisionsTotal.WithLabelValues(service, decision).Inc()
}

func (m *HTTPServerMetrics) RecordLeadCaptured(service, kind string) {
	m.leadsCapturedTotal.WithLabelValues(service, kind).Inc()
}

func (m *HTTPServerMetrics) RecordCheckout(service, status string) {
	m.checkoutsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordRateLimited(service string) {
	m.rateLimitedTotal.WithLabelValues(service).Inc()
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
