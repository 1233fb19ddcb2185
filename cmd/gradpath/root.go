package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/cli"
	"github.com/div0rce/gradpath/pkg/config"
	"github.com/div0rce/gradpath/pkg/engine"
	"github.com/div0rce/gradpath/pkg/requirements"
	"github.com/div0rce/gradpath/pkg/telemetry/logging"
	"github.com/div0rce/gradpath/pkg/telemetry/metrics"
	"github.com/div0rce/gradpath/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile    string
	verbose    bool
	metricsOut string
)

// app holds what every command shares: configuration and telemetry.
type app struct {
	config    *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
}

// current is set by the root command's PersistentPreRunE.
var current *app

var rootCmd = &cobra.Command{
	Use:   "gradpath",
	Short: "gradpath - degree-requirement rule engine and plan auditor",
	Long: `gradpath evaluates degree-requirement rules against a student's courses
and audits degree plans against versioned requirement sets.

It provides:
  - Deterministic rule evaluation with failure witnesses and explanations
  - Loading, validation and migration of requirement-set files
  - Plan audits with readiness blockers, stored in SQLite
  - Retention, export and hot reload of requirement sets`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if current != nil {
		if cerr := current.close(); cerr != nil {
			fmt.Fprintln(os.Stderr, cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and GRADPATH_* variables when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus metrics to this textfile on exit")
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, logOut))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	return &app{
		config:    cfg,
		logger:    logger,
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:    tracer,
	}, nil
}

// getApp returns the shared app, building one from the global flags when a
// command runs without the root command.
func getApp() (*app, error) {
	if current != nil {
		return current, nil
	}
	a, err := newApp(os.Stderr)
	if err != nil {
		return nil, err
	}
	current = a
	return a, nil
}

// close flushes metrics and shuts the tracer down.
func (a *app) close() error {
	path := metricsOut
	if path == "" {
		path = a.config.Telemetry.Metrics.TextfilePath
	}
	if path != "" && a.config.Telemetry.Metrics.Enabled {
		if err := a.collector.WriteToTextfile(path); err != nil {
			a.logger.Error("Failed to write metrics textfile", "path", path, "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.tracer.Shutdown(ctx)
}

// evaluator builds the rule evaluator the configuration asks for.
func (a *app) evaluator() *engine.Evaluator {
	if n := a.config.Engine.ParallelMinChildren; n > 0 {
		return engine.NewEvaluator(engine.WithParallel(n))
	}
	return engine.NewEvaluator()
}

// loaderConfig derives the requirement loader settings. Command flags can
// only switch checks on.
func (a *app) loaderConfig(strict, schema bool) *requirements.LoaderConfig {
	rc := a.config.Requirements
	return &requirements.LoaderConfig{
		Extensions:       rc.Extensions,
		MaxFileSize:      rc.MaxFileSize,
		SkipHidden:       true,
		Strict:           rc.Strict || strict,
		SchemaValidation: rc.SchemaValidation || schema,
	}
}

// loadRegistry loads every requirement set under dir into a registry that
// reports reloads to the metrics collector.
func (a *app) loadRegistry(ctx context.Context, dir string) (*requirements.Registry, error) {
	if dir == "" {
		dir = a.config.Requirements.Dir
	}
	loader := requirements.NewLoader(a.loaderConfig(false, false), a.logger)
	registry := requirements.NewRegistry(dir, loader, a.logger)
	registry.SetObserver(a.collector)
	if err := registry.Reload(ctx); err != nil {
		return nil, err
	}
	return registry, nil
}

func outWriter(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
