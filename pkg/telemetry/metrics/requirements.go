package metrics

import (
	"github.com/div0rce/gradpath/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequirementsMetrics tracks requirement-set loading.
//
// Metrics:
//   - gradpath_requirement_reloads_total: Registry reloads by result
//   - gradpath_requirement_sets: Sets currently loaded
//   - gradpath_quarantined_rules: Rules quarantined in the last reload
type RequirementsMetrics struct {
	reloadsTotal *prometheus.CounterVec
	sets         prometheus.Gauge
	quarantined  prometheus.Gauge
}

// NewRequirementsMetrics creates and registers requirement-set metrics.
func NewRequirementsMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequirementsMetrics {
	rm := &RequirementsMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requirement_reloads_total",
				Help:      "Total number of requirement registry reloads",
			},
			[]string{"result"},
		),

		sets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requirement_sets",
				Help:      "Number of requirement sets currently loaded",
			},
		),

		quarantined: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "quarantined_rules",
				Help:      "Number of rules quarantined as unsupported in the last reload",
			},
		),
	}

	registry.MustRegister(
		rm.reloadsTotal,
		rm.sets,
		rm.quarantined,
	)

	return rm
}

// RecordReload records a registry reload. Gauges only move on success.
func (rm *RequirementsMetrics) RecordReload(success bool, sets, problems int) {
	if !success {
		rm.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	rm.reloadsTotal.WithLabelValues("success").Inc()
	rm.sets.Set(float64(sets))
	rm.quarantined.Set(float64(problems))
}
