// Package tracing provides OpenTelemetry tracing for gradpath.
//
// New builds an SDK tracer provider with a parent-based sampler and an
// OTLP/gRPC exporter, and installs it globally. Packages start spans from
// otel.Tracer(tracing.InstrumentationName), so they stay noop until a
// provider is installed.
//
// # Sampling Strategies
//
//   - always: sample every trace (default)
//   - never: sample nothing
//   - ratio: sample a fraction of traces by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "audit.run",
//	    trace.WithAttributes(tracing.PlanAttributes(plan.ID, set.ID, set.ProgramVersion)...))
//	defer span.End()
package tracing
