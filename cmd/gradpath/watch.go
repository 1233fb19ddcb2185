package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/audit"
	"github.com/div0rce/gradpath/pkg/audit/retention"
	"github.com/div0rce/gradpath/pkg/audit/storage"
	"github.com/div0rce/gradpath/pkg/cli"
	"github.com/div0rce/gradpath/pkg/requirements"
	"github.com/div0rce/gradpath/pkg/server"
)

var watchFlags struct {
	plan         string
	requirements string
	set          string
	listen       string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-audit a plan whenever requirement files change",
	Long: `Load the requirement sets, audit the plan, then watch the requirements
directory and audit again after every successful reload. Each audit is
printed as one JSON line and stored with the configured backend.

While running, the retention policy is applied on its cron schedule
(audit.retention.prune_schedule). With --listen (or server.listen_address)
an ops endpoint serves /metrics, /healthz and /readyz. Stop with SIGINT or
SIGTERM.

Examples:
  gradpath watch --plan plan.yaml
  gradpath watch --plan plan.yaml --requirements requirements/ --set cs-bs-2024
  gradpath watch --plan plan.yaml --listen 127.0.0.1:9464`,
	RunE: watchPlan,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.plan, "plan", "p", "", "degree plan file")
	watchCmd.Flags().StringVar(&watchFlags.requirements, "requirements", "", "requirements directory (default from config)")
	watchCmd.Flags().StringVar(&watchFlags.set, "set", "", "requirement set id (default from the plan)")
	watchCmd.Flags().StringVar(&watchFlags.listen, "listen", "", "ops endpoint address (default from config, empty disables)")
}

// reauditObserver forwards reload outcomes to the metrics collector and
// re-runs the audit after each successful reload.
type reauditObserver struct {
	next    requirements.ReloadObserver
	onReady func()
}

func (o *reauditObserver) RecordReload(success bool, sets, problems int) {
	if o.next != nil {
		o.next.RecordReload(success, sets, problems)
	}
	if success && o.onReady != nil {
		o.onReady()
	}
}

// planWatcher audits one plan against the current registry contents.
type planWatcher struct {
	plan     *audit.Plan
	setID    string
	registry *requirements.Registry
	auditor  *audit.Auditor
	app      *app

	mu  sync.Mutex
	out io.Writer
}

func (pw *planWatcher) run(ctx context.Context) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	set, err := pw.registry.Get(pw.setID)
	if err != nil {
		pw.app.logger.Error("Requirement set unavailable", "set", pw.setID, "error", err)
		return
	}
	result, err := pw.auditor.Run(ctx, pw.plan, set)
	if err != nil {
		pw.app.logger.Error("Audit failed", "plan", pw.plan.ID, "error", err)
		if result == nil {
			return
		}
	}
	if err := json.NewEncoder(pw.out).Encode(result); err != nil {
		pw.app.logger.Error("Failed to write audit", "error", err)
	}
}

// newOpsServer returns the ops endpoint, or nil when no address is set.
func newOpsServer(a *app, registry *requirements.Registry) *server.Server {
	cfg := a.config.Server
	if watchFlags.listen != "" {
		cfg.ListenAddress = watchFlags.listen
	}
	if cfg.ListenAddress == "" {
		return nil
	}
	return server.New(&cfg, server.Options{
		Metrics: a.collector.Handler(),
		Ready: server.ReadinessFunc(func() error {
			if registry.Count() == 0 {
				return errors.New("no requirement sets loaded")
			}
			return nil
		}),
		Logger: a.logger,
	})
}

func watchPlan(cmd *cobra.Command, args []string) error {
	if watchFlags.plan == "" {
		return cli.NewConfigError("plan", "--plan must be specified")
	}

	a, err := getApp()
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmdContext(cmd))
	defer stop()

	plan, err := audit.LoadPlan(watchFlags.plan)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	setID := watchFlags.set
	if setID == "" {
		setID = plan.RequirementSetID
	}
	if setID == "" {
		return cli.NewConfigError("set", "plan names no requirement_set; pass --set")
	}

	dir := watchFlags.requirements
	if dir == "" {
		dir = a.config.Requirements.Dir
	}
	registry, err := a.loadRegistry(ctx, dir)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	opts := []audit.Option{
		audit.WithRecorder(a.collector),
		audit.WithEvaluator(a.evaluator()),
		audit.WithLogger(a.logger),
	}
	st, err := storage.New(&a.config.Audit, a.logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	if st != nil {
		defer st.Close()
		opts = append(opts, audit.WithStorage(st))

		pruner := retention.NewPruner(st, retention.FromConfig(a.config.Audit.Retention), a.logger)
		pruner.SetObserver(a.collector)
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer pruner.Stop()
		if next := pruner.NextPruning(); next != nil && !next.IsZero() {
			a.logger.Info("Retention scheduled", "next", next.UTC())
		}
	}

	pw := &planWatcher{
		plan:     plan,
		setID:    setID,
		registry: registry,
		auditor:  audit.NewAuditor(opts...),
		app:      a,
		out:      outWriter(cmd),
	}
	pw.run(ctx)

	registry.SetObserver(&reauditObserver{
		next:    a.collector,
		onReady: func() { pw.run(ctx) },
	})

	wcfg := requirements.DefaultWatcherConfig(dir)
	wcfg.Extensions = a.config.Requirements.Extensions
	if d := a.config.Requirements.DebounceDelay; d > 0 {
		wcfg.DebounceInterval = d
	}
	watcher, err := requirements.NewWatcher(wcfg, registry, a.logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- watcher.Watch(ctx) }()

	if srv := newOpsServer(a, registry); srv != nil {
		go func() {
			if err := srv.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	a.logger.Info("Watching requirements", "dir", dir, "plan", plan.ID, "set", setID)

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	if serr := watcher.Stop(); serr != nil {
		a.logger.Warn("Failed to stop watcher", "error", serr)
	}
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	a.logger.Info("Watch stopped")
	return nil
}
