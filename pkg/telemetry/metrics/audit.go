package metrics

import (
	"strconv"
	"time"

	"github.com/div0rce/gradpath/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks degree audits.
//
// Metrics:
//   - gradpath_audits_total: Audits by requirement set and readiness
//   - gradpath_audit_duration_seconds: Audit computation duration
//   - gradpath_audit_requirements_total: Requirement results by status
//   - gradpath_audits_pruned_total: Audits removed by retention
type AuditMetrics struct {
	auditsTotal       *prometheus.CounterVec
	auditDuration     prometheus.Histogram
	requirementsTotal *prometheus.CounterVec
	prunedTotal       prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics with the provided registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		auditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audits_total",
				Help:      "Total number of degree audits",
			},
			[]string{"requirement_set", "ready"},
		),

		auditDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_duration_seconds",
				Help:      "Duration of degree audit computation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~800ms
			},
		),

		requirementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_requirements_total",
				Help:      "Total number of audited requirements by status",
			},
			[]string{"status"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audits_pruned_total",
				Help:      "Total number of audits deleted by retention",
			},
		),
	}

	registry.MustRegister(
		am.auditsTotal,
		am.auditDuration,
		am.requirementsTotal,
		am.prunedTotal,
	)

	return am
}

// RecordAudit records a completed audit.
func (am *AuditMetrics) RecordAudit(setID string, ready bool, duration time.Duration) {
	am.auditsTotal.WithLabelValues(setID, strconv.FormatBool(ready)).Inc()
	am.auditDuration.Observe(duration.Seconds())
}

// RecordRequirementStatus records one audited requirement.
func (am *AuditMetrics) RecordRequirementStatus(status string) {
	am.requirementsTotal.WithLabelValues(status).Inc()
}

// RecordPruned records audits deleted by retention.
func (am *AuditMetrics) RecordPruned(count int64) {
	am.prunedTotal.Add(float64(count))
}
