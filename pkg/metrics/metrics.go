// Package metrics exposes Prometheus instrumentation for catalog operations,
// link ingestion and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the Prometheus namespace for all gallery metrics
	Namespace = "gallery"

	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelResult     = "result"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	StatusSuccess = "success"
	StatusError   = "error"

	OpAppend         = "append"
	OpRemoveEntry    = "remove_entry"
	OpRemoveCategory = "remove_category"
	OpReplace        = "replace"
	OpSetSettings    = "set_settings"
)

var (
	// CatalogOperationsTotal counts mutating catalog operations by status
	CatalogOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_operations_total",
			Help:      "Total number of catalog write operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// CatalogOperationDuration includes the time spent waiting for the document lock
	CatalogOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "catalog_operation_duration_seconds",
			Help:      "Duration of catalog write operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation},
	)

	// LinkIngestionsTotal counts link ingestion attempts by outcome
	LinkIngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "link_ingestions_total",
			Help:      "Total number of link ingestion attempts by result",
		},
		[]string{LabelResult},
	)

	// HTTPRequestsTotal tracks the total number of HTTP requests by method and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)
)

// RecordCatalogOperation records the outcome and latency of a catalog write
func RecordCatalogOperation(operation string, started time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	CatalogOperationsTotal.WithLabelValues(operation, status).Inc()
	CatalogOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordLinkIngestion records the outcome of one link ingestion
func RecordLinkIngestion(result string) {
	LinkIngestionsTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, statusCode string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware records request counts and latency.
//
// Usage:
//
//	router := chi.NewRouter()
//	router.Use(metrics.HTTPMiddleware)
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := NewResponseWriter(w)

		next.ServeHTTP(wrapper, r)

		RecordHTTPRequest(r.Method, strconv.Itoa(wrapper.StatusCode()), time.Since(start).Seconds())
	})
}

// ResponseWriter captures the status code written by the wrapped handler.
// Handlers that never call WriteHeader report 200.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// NewResponseWriter wraps w
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// StatusCode returns the first status written
func (rw *ResponseWriter) StatusCode() int {
	return rw.statusCode
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
