package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "supplier_portal"

var (
	// HTTP request metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Status code category counter
	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_status_category_total",
			Help:      "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)

	// Authentication metrics
	AuthAttemptsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Total number of manager authentication attempts",
		},
	)

	AuthErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_errors_total",
			Help:      "Total number of authentication errors by type",
		},
		[]string{"type"},
	)

	// Store operation metrics
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Domain metrics
	SupplierOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_operations_total",
			Help:      "Total number of supplier operations",
		},
		[]string{"operation"},
	)

	EvaluationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of evaluation submissions by status tier",
		},
		[]string{"tier"},
	)

	WarningsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Total number of penalty operations",
		},
		[]string{"action"},
	)

	BlockedSuppliersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocked_suppliers",
			Help:      "Number of suppliers currently blocked",
		},
	)

	IssueReportsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issue_reports_total",
			Help:      "Total number of issue reports by outcome",
		},
		[]string{"outcome"},
	)

	ReputationLookupsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reputation_lookups_total",
			Help:      "Total number of reputation lookups by provenance and outcome",
		},
		[]string{"provenance", "outcome"},
	)

	ReputationLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reputation_lookup_duration_seconds",
			Help:      "Duration of reputation lookups in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		StatusCategoryCounter,
		AuthAttemptsCounter,
		AuthErrorsCounter,
		DbOperationDuration,
		SupplierOperationsCounter,
		EvaluationsCounter,
		WarningsCounter,
		BlockedSuppliersGauge,
		IssueReportsCounter,
		ReputationLookupsCounter,
		ReputationLookupDuration,
	)
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation returns a function that records the duration of a store operation
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordSupplierOperation increments the counter for supplier operations
func RecordSupplierOperation(operation string) {
	SupplierOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordAuthError increments the authentication error counter
func RecordAuthError(errorType string) {
	AuthErrorsCounter.WithLabelValues(errorType).Inc()
}

// RecordEvaluation counts an accepted evaluation
func RecordEvaluation(tier string) {
	EvaluationsCounter.WithLabelValues(tier).Inc()
}

// RecordWarning counts a penalty operation ("apply", "reset", "rejected")
func RecordWarning(action string) {
	WarningsCounter.WithLabelValues(action).Inc()
}

// UpdateBlockedSuppliers sets the blocked suppliers gauge
func UpdateBlockedSuppliers(count int) {
	BlockedSuppliersGauge.Set(float64(count))
}

// RecordIssueReport counts an issue report ("created", "rejected")
func RecordIssueReport(outcome string) {
	IssueReportsCounter.WithLabelValues(outcome).Inc()
}

// TrackReputationLookup returns a function recording a finished lookup
func TrackReputationLookup() func(provenance, outcome string) {
	start := time.Now()
	return func(provenance, outcome string) {
		ReputationLookupDuration.Observe(time.Since(start).Seconds())
		ReputationLookupsCounter.WithLabelValues(provenance, outcome).Inc()
	}
}

// StatusCategory returns the status class label for an HTTP status code
func StatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}
