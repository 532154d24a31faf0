package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsEvaluated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_pipeline_requests_total",
		Help: "Total number of requests evaluated by the security pipeline",
	})
	requestsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "argus_pipeline_rejected_total",
		Help: "Total number of requests rejected by the security pipeline",
	}, []string{"reason"})
	auditFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_audit_write_failures_total",
		Help: "Total number of failed audit trail writes",
	})
	integrityViolations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_audit_integrity_violations_total",
		Help: "Total number of audit records that failed integrity verification",
	})
	backgroundDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_background_dropped_total",
		Help: "Total number of background scoring/audit tasks dropped at capacity",
	})
	alertsEscalated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_alerts_escalated_total",
		Help: "Total number of threat assessments escalated into alerts",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		requestsEvaluated,
		requestsRejected,
		auditFailures,
		integrityViolations,
		backgroundDropped,
		alertsEscalated,
	)
}

// IncEvaluated increments the evaluated requests counter.
func IncEvaluated() { requestsEvaluated.Inc() }

// IncRejected increments the rejection counter for the given reason.
func IncRejected(reason string) { requestsRejected.WithLabelValues(reason).Inc() }

// IncAuditFailure increments the failed audit write counter.
func IncAuditFailure() { auditFailures.Inc() }

// IncIntegrityViolation increments the tampered-record counter.
func IncIntegrityViolation() { integrityViolations.Inc() }

// IncBackgroundDropped increments the dropped background task counter.
func IncBackgroundDropped() { backgroundDropped.Inc() }

// IncAlertEscalated increments the escalated alerts counter.
func IncAlertEscalated() { alertsEscalated.Inc() }
