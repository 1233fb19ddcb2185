// Package metrics provides Prometheus metrics collection for gradpath.
//
// # Metrics Categories
//
//   - Engine: rule evaluations by kind and outcome, duration, tree size
//   - Audit: audits by requirement set and readiness, requirement statuses,
//     retention deletes
//   - Requirements: registry reloads, loaded sets, quarantined rules
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordEvaluation("N_OF", "failed", 4, elapsed)
//
// Short-lived commands dump the registry for the node_exporter textfile
// collector:
//
//	defer collector.WriteToTextfile("/var/lib/node_exporter/gradpath.prom")
//
// "gradpath watch" can serve it instead through the ops endpoint:
//
//	mux.Handle("/metrics", collector.Handler())
package metrics
