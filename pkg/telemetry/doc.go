// Package telemetry groups the observability packages used by gradpath.
//
// # Components
//
//   - logging: slog loggers with audit context fields
//   - metrics: Prometheus collectors, dumped as a textfile
//   - tracing: OpenTelemetry tracer provider with OTLP export
//
// The engine packages stay free of telemetry. Callers (the auditor and the
// CLI) time evaluations, record metrics and open spans around them.
package telemetry
