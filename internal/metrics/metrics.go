package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the checkout guard.
var (
	ValidationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_validation_runs_total",
			Help: "Total number of composite order validations by outcome",
		},
		[]string{"outcome"},
	)

	ValidationIssuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_validation_issues_total",
			Help: "Total number of validation errors and warnings by code",
		},
		[]string{"code", "severity"},
	)

	ValidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_validation_duration_seconds",
			Help:    "Duration of composite order validation",
			Buckets: prometheus.DefBuckets,
		},
	)

	AuditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_audit_entries_total",
			Help: "Total number of audit entries by event type, severity and persistence outcome",
		},
		[]string{"event_type", "severity", "persisted"},
	)

	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_audit_alerts_total",
			Help: "Total number of critical alerts dispatched by outcome",
		},
		[]string{"outcome"},
	)

	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Total number of checkout attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ArchivedEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_audit_archived_entries_total",
			Help: "Total number of audit entries written to the archive",
		},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry.
// Subsequent calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ValidationRunsTotal)
		prometheus.MustRegister(ValidationIssuesTotal)
		prometheus.MustRegister(ValidationDuration)
		prometheus.MustRegister(AuditEntriesTotal)
		prometheus.MustRegister(AlertsTotal)
		prometheus.MustRegister(CheckoutsTotal)
		prometheus.MustRegister(ArchivedEntriesTotal)
	})
}
