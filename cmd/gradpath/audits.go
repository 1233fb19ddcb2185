package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/audit"
	"github.com/div0rce/gradpath/pkg/audit/export"
	"github.com/div0rce/gradpath/pkg/audit/retention"
	"github.com/div0rce/gradpath/pkg/audit/storage"
	"github.com/div0rce/gradpath/pkg/cli"
)

// queryFlags select stored audits.
type queryFlags struct {
	plan   string
	set    string
	since  string
	until  string
	limit  int
	offset int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.plan, "plan", "", "filter by plan id")
	cmd.Flags().StringVar(&f.set, "set", "", "filter by requirement set id")
	cmd.Flags().StringVar(&f.since, "since", "", "computed at or after (RFC3339)")
	cmd.Flags().StringVar(&f.until, "until", "", "computed before (RFC3339)")
	cmd.Flags().IntVar(&f.limit, "limit", audit.DefaultLimit, "maximum number of audits")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "number of audits to skip")
}

func (f *queryFlags) query() (*audit.Query, error) {
	q := &audit.Query{
		PlanID:           f.plan,
		RequirementSetID: f.set,
		Limit:            f.limit,
		Offset:           f.offset,
	}
	var err error
	if q.Since, err = parseTime("since", f.since); err != nil {
		return nil, err
	}
	if q.Until, err = parseTime("until", f.until); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, cli.NewConfigError("query", err.Error())
	}
	return q, nil
}

func parseTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, cli.NewConfigError(field, fmt.Sprintf("invalid time %q: %v", value, err))
	}
	return &t, nil
}

var (
	listFlags struct {
		queryFlags
		format string
	}
	showFlags struct {
		format string
	}
	pruneFlags struct {
		days       int
		maxRecords int64
	}
	exportFlags struct {
		queryFlags
		format string
		output string
	}
)

var auditsCmd = &cobra.Command{
	Use:   "audits",
	Short: "Inspect and maintain stored audits",
	Long: `Inspect and maintain audits stored by "gradpath audit --store".

Subcommands work against the backend configured under audit.backend.`,
}

var auditsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored audits, newest first",
	Long: `List stored audits, newest first.

Examples:
  gradpath audits list --plan plan-1
  gradpath audits list --set cs-bs-2024 --since 2026-01-01T00:00:00Z --format csv`,
	RunE: listAudits,
}

var auditsShowCmd = &cobra.Command{
	Use:   "show AUDIT_ID",
	Short: "Show one stored audit",
	Args:  cobra.ExactArgs(1),
	RunE:  showAudit,
}

var auditsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete audits older than the retention period, then the oldest audits
beyond the record limit. With audit.retention.archive_path set, deleted
audits are archived as JSON first.

Examples:
  gradpath audits prune
  gradpath audits prune --days 30 --max-records 1000`,
	RunE: pruneAudits,
}

var auditsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored audits as JSON or CSV",
	Long: `Export stored audits as a JSON array or as CSV with one row per audit.

Examples:
  gradpath audits export --plan plan-1 --format json --output audits.json
  gradpath audits export --since 2026-01-01T00:00:00Z --format csv`,
	RunE: exportAudits,
}

func init() {
	rootCmd.AddCommand(auditsCmd)
	auditsCmd.AddCommand(auditsListCmd, auditsShowCmd, auditsPruneCmd, auditsExportCmd)

	listFlags.register(auditsListCmd)
	auditsListCmd.Flags().StringVar(&listFlags.format, "format", "text", "output format: text, json, csv")

	auditsShowCmd.Flags().StringVar(&showFlags.format, "format", "text", "output format: text, json")

	auditsPruneCmd.Flags().IntVar(&pruneFlags.days, "days", -1, "retention days (default from config, 0 keeps forever)")
	auditsPruneCmd.Flags().Int64Var(&pruneFlags.maxRecords, "max-records", -1, "record limit (default from config, 0 is unlimited)")

	exportFlags.register(auditsExportCmd)
	auditsExportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "export format: json, csv")
	auditsExportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default stdout)")
}

// openStorage opens the configured audit backend.
func openStorage(a *app) (audit.Storage, error) {
	st, err := storage.New(&a.config.Audit, a.logger)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, cli.NewConfigError("audit.backend", "no audit storage configured")
	}
	return st, nil
}

func listAudits(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(listFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatCSV)
	if err != nil {
		return err
	}
	query, err := listFlags.query()
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	st, err := openStorage(a)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	audits, err := st.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("audits list", err)
	}

	w := outWriter(cmd)
	switch format {
	case cli.FormatJSON:
		return export.NewJSONExporter(true).Export(ctx, audits, w)
	case cli.FormatCSV:
		return export.NewCSVExporter(true).Export(ctx, audits, w)
	default:
		return writeAuditList(w, audits)
	}
}

func writeAuditList(w io.Writer, audits []*audit.Audit) error {
	if len(audits) == 0 {
		_, err := fmt.Fprintln(w, "No audits found")
		return err
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-16s  %-20s  %-5s  %s\n", "ID", "PLAN", "SET", "COMPUTED", "READY", "COMPLETE")
	for _, a := range audits {
		ready := "no"
		if a.Readiness != nil && a.Readiness.OK {
			ready = "yes"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-16s  %-20s  %-5s  %.1f%%\n",
			a.ID, a.PlanID, a.RequirementSetID,
			a.ComputedAt.UTC().Format(time.RFC3339), ready, a.Summary.PercentComplete*100)
	}
	_, err := fmt.Fprintf(w, "\n%d audit(s)\n", len(audits))
	return err
}

func showAudit(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(showFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	st, err := openStorage(a)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.Get(cmdContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("audits show", err)
	}

	w := outWriter(cmd)
	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, result)
	}
	return writeAuditText(w, result)
}

func pruneAudits(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	cfg := retention.FromConfig(a.config.Audit.Retention)
	if pruneFlags.days >= 0 {
		cfg.RetentionDays = pruneFlags.days
	}
	if pruneFlags.maxRecords >= 0 {
		cfg.MaxRecords = pruneFlags.maxRecords
	}

	st, err := openStorage(a)
	if err != nil {
		return err
	}
	defer st.Close()

	pruner := retention.NewPruner(st, cfg, a.logger)
	pruner.SetObserver(a.collector)

	deleted, err := pruner.Prune(cmdContext(cmd))
	if err != nil {
		return cli.NewCommandError("audits prune", err)
	}
	_, err = fmt.Fprintf(outWriter(cmd), "Pruned %d audit(s)\n", deleted)
	return err
}

func exportAudits(cmd *cobra.Command, args []string) error {
	exporter, err := export.New(exportFlags.format, true)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}
	query, err := exportFlags.query()
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	st, err := openStorage(a)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	audits, err := st.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("audits export", err)
	}

	if exportFlags.output == "" {
		return writeExport(ctx, exporter, audits, outWriter(cmd))
	}

	f, err := os.Create(exportFlags.output)
	if err != nil {
		return cli.NewCommandError("audits export", err)
	}
	if err := writeExport(ctx, exporter, audits, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return cli.NewCommandError("audits export", err)
	}
	a.logger.Info("Audits exported", "file", exportFlags.output, "count", len(audits), "format", exportFlags.format)
	return nil
}

func writeExport(ctx context.Context, exporter audit.Exporter, audits []*audit.Audit, w io.Writer) error {
	if err := exporter.Export(ctx, audits, w); err != nil {
		return cli.NewCommandError("audits export", err)
	}
	return nil
}
