package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	enrolleesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enrollees_created_total",
			Help: "Total number of enrollees created",
		},
	)

	referralsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referrals_created_total",
			Help: "Total number of referrals created",
		},
		[]string{"category"},
	)

	referralsResponded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referrals_responded_total",
			Help: "Total number of referral responses",
		},
		[]string{"status"},
	)

	permissionDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Total number of requests denied by the permission table",
		},
		[]string{"action", "role"},
	)

	assessmentSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_syncs_total",
			Help: "Total number of clinical assessment sync attempts",
		},
		[]string{"outcome"},
	)

	sampleDataLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sample_data_loads_total",
			Help: "Total number of sample data loads",
		},
	)
)

// RecordEnrolleeCreated increments the enrollee creation counter
func RecordEnrolleeCreated() {
	enrolleesCreated.Inc()
}

// RecordReferralCreated increments the referral creation counter
func RecordReferralCreated(category string) {
	referralsCreated.WithLabelValues(category).Inc()
}

// RecordReferralResponded increments the referral response counter
func RecordReferralResponded(status string) {
	referralsResponded.WithLabelValues(status).Inc()
}

// RecordPermissionDenial increments the denial counter
func RecordPermissionDenial(action, role string) {
	permissionDenials.WithLabelValues(action, role).Inc()
}

// RecordAssessmentSync increments the sync counter, outcome "ok" or "fallback"
func RecordAssessmentSync(outcome string) {
	assessmentSyncs.WithLabelValues(outcome).Inc()
}

// RecordSampleDataLoad increments the sample data load counter
func RecordSampleDataLoad() {
	sampleDataLoads.Inc()
}

// Middleware records request count, duration and in-flight gauge
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
