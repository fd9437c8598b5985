package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Inference metrics
	PredictionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careercast_prediction_requests_total",
			Help: "Total number of prediction requests",
		},
		[]string{"state"}, // state: success|no_model|failed
	)

	PredictionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "careercast_prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	PredictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "careercast_prediction_confidence",
			Help:    "Confidence scores of successful predictions",
			Buckets: prometheus.LinearBuckets(0.0, 0.1, 11),
		},
	)

	// Storage metrics
	StorageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careercast_storage_operations_total",
			Help: "Total number of storage gateway operations",
		},
		[]string{"engine", "operation", "status"}, // status: success|error
	)

	StorageOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careercast_storage_operation_duration_seconds",
			Help:    "Storage gateway operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"engine", "operation"},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careercast_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careercast_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(PredictionRequests)
	prometheus.MustRegister(PredictionLatency)
	prometheus.MustRegister(PredictionConfidence)
	prometheus.MustRegister(StorageOps)
	prometheus.MustRegister(StorageOpDuration)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records a prediction attempt outcome
func RecordPrediction(state string, latency time.Duration, confidence *float64) {
	PredictionRequests.WithLabelValues(state).Inc()
	PredictionLatency.Observe(latency.Seconds())
	if confidence != nil {
		PredictionConfidence.Observe(*confidence)
	}
}

// RecordStorageOp records a storage gateway operation
func RecordStorageOp(engine, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	StorageOps.WithLabelValues(engine, operation, status).Inc()
	StorageOpDuration.WithLabelValues(engine, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, path, status).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
