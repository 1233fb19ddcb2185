// Package server provides the operational HTTP endpoint of long-running
// gradpath commands.
//
// It is not an API for audits. It exposes process health for probes and
// the Prometheus registry for scrapers while "gradpath watch" runs.
//
// # Routes
//
//   - GET /healthz - Liveness probe (always 200 while serving)
//   - GET /readyz - Readiness probe (503 until the ReadinessChecker passes)
//   - GET /metrics - Prometheus metrics, when a metrics handler is given
//
// # Usage
//
//	srv := server.New(&cfg.Server, server.Options{
//	    Metrics: collector.Handler(),
//	    Ready: server.ReadinessFunc(func() error {
//	        if registry.Count() == 0 {
//	            return errors.New("no requirement sets loaded")
//	        }
//	        return nil
//	    }),
//	    Logger: logger,
//	})
//	go srv.Start(ctx)
//
// Start blocks until ctx is cancelled, then shuts down gracefully within
// ShutdownTimeout.
//
// # Middleware Chain
//
// Requests pass through (innermost to outermost):
//  1. Logging: logs method, path, status and latency at debug level
//  2. Recovery: recovers from panics and returns 500
package server
