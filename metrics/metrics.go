package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes for the live order endpoint
const (
	OutcomeOK       = "ok"
	OutcomeSoftFail = "soft_fail"
	OutcomeHardFail = "hard_fail"
)

var (
	// Requests counts live order computations by outcome
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_order_requests_total",
		Help: "Total number of live order computations by outcome",
	}, []string{"outcome"})

	// UpstreamErrors tracks upstream errors by operation and error type
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_order_upstream_errors_total",
		Help: "Total number of upstream errors",
	}, []string{"operation", "error_type"})

	// TokenRefreshes tracks app token exchanges by result
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "live_order_token_refreshes_total",
		Help: "Total number of app access token exchanges",
	}, []string{"result"})

	// LiveChannels is the number of roster channels live at the last computation
	LiveChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "live_order_live_channels",
		Help: "Number of roster channels live at the last computation",
	})

	// UpstreamDuration observes latency of upstream calls
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "live_order_upstream_request_duration_seconds",
		Help:    "Duration of upstream requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// RecordRequest increments the request counter for an outcome
func RecordRequest(outcome string) {
	Requests.WithLabelValues(outcome).Inc()
}

// RecordUpstreamError increments the error counter for an operation and error type
func RecordUpstreamError(operation, errorType string) {
	UpstreamErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordTokenRefresh increments the token refresh counter
// result should be "success" or "failure"
func RecordTokenRefresh(result string) {
	TokenRefreshes.WithLabelValues(result).Inc()
}

// SetLiveChannels sets the number of live roster channels
func SetLiveChannels(count int) {
	LiveChannels.Set(float64(count))
}

// ObserveUpstreamDuration records how long an upstream call took
func ObserveUpstreamDuration(operation string, d time.Duration) {
	UpstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}
