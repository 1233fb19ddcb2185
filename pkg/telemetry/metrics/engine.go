package metrics

import (
	"time"

	"github.com/div0rce/gradpath/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks rule evaluation.
//
// Metrics:
//   - gradpath_rule_evaluations_total: Rule evaluations by root kind and outcome
//   - gradpath_rule_evaluation_duration_seconds: Evaluate plus finalize duration
//   - gradpath_rule_nodes: Size of evaluated trees
type EngineMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	treeSize           prometheus.Histogram
}

// NewEngineMetrics creates and registers engine metrics with the provided registry.
func NewEngineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EngineMetrics {
	buckets := cfg.EvaluationDurationBuckets
	if len(buckets) == 0 {
		buckets = prometheus.ExponentialBuckets(0.00001, 2, 14) // 10µs to ~80ms
	}

	em := &EngineMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"kind", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluation_duration_seconds",
				Help:      "Duration of rule evaluation in seconds",
				Buckets:   buckets,
			},
			[]string{"kind"},
		),

		treeSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_nodes",
				Help:      "Number of nodes in evaluated rule trees",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.treeSize,
	)

	return em
}

// RecordEvaluation records one rule evaluation.
//
// Parameters:
//   - kind: Root node kind ("COURSE_SET", "N_OF", ...)
//   - outcome: "satisfied", "failed" or "unsupported"
//   - nodes: Number of nodes in the tree
//   - duration: Time taken to evaluate and finalize
func (em *EngineMetrics) RecordEvaluation(kind, outcome string, nodes int, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(kind, outcome).Inc()
	em.evaluationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	em.treeSize.Observe(float64(nodes))
}
