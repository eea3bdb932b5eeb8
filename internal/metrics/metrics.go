package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP request metrics for API server
var (
	// HTTPRequestDuration tracks the duration of HTTP requests
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method, path, and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsTotal counts the total number of HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)
)

// Aggregator fetch outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeHTTPError   = "http_error"
	OutcomeDecodeError = "decode_error"
	OutcomeNetwork     = "network_error"
	OutcomeTimeout     = "timeout"
	OutcomeRateLimited = "rate_limited"
	OutcomeDisabled    = "disabled"
)

// Aggregator and pipeline metrics
var (
	// AggregatorFetchTotal counts aggregator fetches by outcome
	AggregatorFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_aggregator_fetch_total",
			Help: "Total number of aggregator offer fetches by outcome",
		},
		[]string{"outcome"},
	)

	// AggregatorFetchDuration tracks aggregator response time
	AggregatorFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "marketplace_aggregator_fetch_duration_seconds",
			Help: "Duration of aggregator offer fetches",
			// Buckets: 10ms to 10s; the fetch is capped by its timeout
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
	)

	// AggregatorOffersReceived counts offers returned by the aggregator
	AggregatorOffersReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_aggregator_offers_received_total",
			Help: "Total number of offers received from the aggregator",
		},
	)

	// FallbackTotal counts listings served from the local catalog
	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_fallback_total",
			Help: "Total number of listings served from the local catalog by reason",
		},
		[]string{"reason"},
	)

	// ResourcesProcessed counts resources run through the listing pipeline
	ResourcesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_resources_processed_total",
			Help: "Total number of resources processed by source and availability",
		},
		[]string{"source", "available"},
	)

	// PipelineDuration tracks how long building a listing takes
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_pipeline_duration_seconds",
			Help:    "Duration of listing pipeline runs by source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// PlanDenials counts plan gate denials by the suggested upgrade
	PlanDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_plan_denials_total",
			Help: "Total number of plan gate denials by resource type and suggested plan",
		},
		[]string{"resource_type", "suggested_plan"},
	)

	// CatalogErrors counts local catalog failures
	CatalogErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_catalog_errors_total",
			Help: "Total number of local catalog errors by operation",
		},
		[]string{"operation"},
	)

	// ApprovalReviews counts admin review lookups by overall status
	ApprovalReviews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_approval_reviews_total",
			Help: "Total number of approval reviews by overall status",
		},
		[]string{"status"},
	)
)

// Helper functions for common metric operations

// RecordHTTPRequest records the duration and increments the counter for an HTTP request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAggregatorFetch records one aggregator fetch with its outcome and offer count
func RecordAggregatorFetch(outcome string, duration time.Duration, offers int) {
	AggregatorFetchTotal.WithLabelValues(outcome).Inc()
	AggregatorFetchDuration.Observe(duration.Seconds())
	if offers > 0 {
		AggregatorOffersReceived.Add(float64(offers))
	}
}

// RecordFallback increments the fallback counter
func RecordFallback(reason string) {
	FallbackTotal.WithLabelValues(reason).Inc()
}

// RecordResourceProcessed increments the processed resource counter
func RecordResourceProcessed(source string, available bool) {
	label := "false"
	if available {
		label = "true"
	}
	ResourcesProcessed.WithLabelValues(source, label).Inc()
}

// RecordPipelineDuration records how long a listing pipeline run took
func RecordPipelineDuration(source string, duration time.Duration) {
	PipelineDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordPlanDenial increments the plan denial counter
func RecordPlanDenial(resourceType, suggestedPlan string) {
	PlanDenials.WithLabelValues(resourceType, suggestedPlan).Inc()
}

// RecordCatalogError increments the catalog error counter
func RecordCatalogError(operation string) {
	CatalogErrors.WithLabelValues(operation).Inc()
}

// RecordApprovalReview increments the approval review counter
func RecordApprovalReview(status string) {
	ApprovalReviews.WithLabelValues(status).Inc()
}
