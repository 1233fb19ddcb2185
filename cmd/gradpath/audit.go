package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/audit"
	"github.com/div0rce/gradpath/pkg/audit/storage"
	"github.com/div0rce/gradpath/pkg/cli"
)

var auditFlags struct {
	plan         string
	requirements string
	set          string
	store        bool
	format       string
	requireReady bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a degree plan against a requirement set",
	Long: `Audit a student's degree plan against a requirement set.

Every requirement is reported as SATISFIED, PENDING (met once in-progress
courses complete), MISSING or UNKNOWN (the rule is unsupported). The audit
ends with a readiness verdict listing its blockers in a fixed order:
INVALID_ITEMS, UNSUPPORTED_RULES, MISSING_REQUIREMENTS, UNKNOWN_REQUIREMENTS.

The set is taken from --set, or else from the plan's requirement_set field.

Examples:
  # Audit and print a summary
  gradpath audit --plan plan.yaml

  # Store the audit with the configured backend
  gradpath audit --plan plan.yaml --store

  # Fail in CI unless the plan is ready
  gradpath audit --plan plan.yaml --require-ready --format json`,
	RunE: auditPlan,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVarP(&auditFlags.plan, "plan", "p", "", "degree plan file")
	auditCmd.Flags().StringVar(&auditFlags.requirements, "requirements", "", "requirements directory (default from config)")
	auditCmd.Flags().StringVar(&auditFlags.set, "set", "", "requirement set id (default from the plan)")
	auditCmd.Flags().BoolVar(&auditFlags.store, "store", false, "store the audit with the configured backend")
	auditCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditCmd.Flags().BoolVar(&auditFlags.requireReady, "require-ready", false, "fail when the plan is not ready")
}

func auditPlan(cmd *cobra.Command, args []string) error {
	if auditFlags.plan == "" {
		return cli.NewConfigError("plan", "--plan must be specified")
	}
	format, err := cli.ParseFormat(auditFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	plan, err := audit.LoadPlan(auditFlags.plan)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	setID := auditFlags.set
	if setID == "" {
		setID = plan.RequirementSetID
	}
	if setID == "" {
		return cli.NewConfigError("set", "plan names no requirement_set; pass --set")
	}

	registry, err := a.loadRegistry(ctx, auditFlags.requirements)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	set, err := registry.Get(setID)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	opts := []audit.Option{
		audit.WithRecorder(a.collector),
		audit.WithEvaluator(a.evaluator()),
		audit.WithLogger(a.logger),
	}
	if auditFlags.store {
		st, err := storage.New(&a.config.Audit, a.logger)
		if err != nil {
			return cli.NewCommandError("audit", err)
		}
		if st == nil {
			return cli.NewConfigError("audit.backend", "--store needs a storage backend, got none")
		}
		defer st.Close()
		opts = append(opts, audit.WithStorage(st))
	}

	result, err := audit.NewAuditor(opts...).Run(ctx, plan, set)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	w := outWriter(cmd)
	if format == cli.FormatJSON {
		err = cli.NewFormatter(cli.FormatJSON).FormatTo(w, result)
	} else {
		err = writeAuditText(w, result)
	}
	if err != nil {
		return err
	}

	if auditFlags.requireReady && (result.Readiness == nil || !result.Readiness.OK) {
		return cli.NewCommandError("audit", fmt.Errorf("plan %s is not ready", plan.ID))
	}
	return nil
}

// writeAuditText prints an audit as a requirement list, a summary and the
// readiness verdict.
func writeAuditText(w io.Writer, a *audit.Audit) error {
	fmt.Fprintf(w, "Audit %s\n", a.ID)
	fmt.Fprintf(w, "Plan: %s  Set: %s", a.PlanID, a.RequirementSetID)
	if a.ProgramVersion != "" {
		fmt.Fprintf(w, " (%s)", a.ProgramVersion)
	}
	fmt.Fprintf(w, "\nComputed: %s\n\n", a.ComputedAt.Format("2006-01-02T15:04:05Z07:00"))

	fmt.Fprintln(w, "Requirements:")
	for _, r := range a.Requirements {
		label := r.NodeID
		if r.Title != "" {
			label = fmt.Sprintf("%s (%s)", r.NodeID, r.Title)
		}
		fmt.Fprintf(w, "  %-9s %s\n", r.Status, label)
		if r.Detail == nil {
			continue
		}
		if len(r.Detail.MissingCourses) > 0 {
			fmt.Fprintf(w, "            missing: %s\n", strings.Join(r.Detail.MissingCourses, ", "))
		}
		if r.Detail.Reason != "" {
			fmt.Fprintf(w, "            reason: %s\n", r.Detail.Reason)
		}
	}

	s := a.Summary
	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "  %d satisfied, %d pending, %d missing, %d unknown\n", s.Satisfied, s.Pending, s.Missing, s.Unknown)
	fmt.Fprintf(w, "  %.1f%% complete (%d of %d known requirements)\n", s.PercentComplete*100, s.Satisfied, s.KnownCount)
	fmt.Fprintf(w, "  %d credits completed, %d in progress\n", s.CompletedCredits, s.PendingCredits)

	if a.Readiness == nil {
		return nil
	}
	if a.Readiness.OK {
		_, err := fmt.Fprintln(w, "\nReady: yes")
		return err
	}
	fmt.Fprintln(w, "\nReady: no")
	for _, b := range a.Readiness.Blockers {
		if b.Count > 0 {
			fmt.Fprintf(w, "  - %s (%d)\n", b.Code, b.Count)
		} else {
			fmt.Fprintf(w, "  - %s\n", b.Code)
		}
	}
	return nil
}
