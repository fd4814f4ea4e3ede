package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrms_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hrms_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrms_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	auditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrms_audit_writes_total",
		Help: "Count of audit log writes by result",
	}, []string{"result"})

	registeredOrganizations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hrms_organizations_registered_total",
		Help: "Count of organizations registered since process start",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin increments the login counter with a result label.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveAuditWrite increments the audit write counter with a result label.
func ObserveAuditWrite(result string) {
	auditWrites.WithLabelValues(result).Inc()
}

// ObserveRegistration increments the registered organizations counter.
func ObserveRegistration() {
	registeredOrganizations.Inc()
}
