package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/div0rce/gradpath/pkg/audit"
)

// CSVExporter exports one row per audit. Requirement details are not
// flattened; blockers are joined with ";".
type CSVExporter struct {
	// IncludeHeader writes a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"id", "plan_id", "requirement_set_id", "program_version", "computed_at",
	"ready", "blockers",
	"satisfied", "pending", "missing", "unknown",
	"percent_complete", "completed_credits", "pending_credits",
}

// Export writes audits to w.
func (e *CSVExporter) Export(ctx context.Context, audits []*audit.Audit, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return audit.NewExportError("csv", len(audits), err)
		}
	}

	for _, a := range audits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(auditToRow(a)); err != nil {
			return audit.NewExportError("csv", len(audits), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError("csv", len(audits), err)
	}
	return nil
}

func auditToRow(a *audit.Audit) []string {
	ready := ""
	var blockers []string
	if a.Readiness != nil {
		ready = strconv.FormatBool(a.Readiness.OK)
		for _, b := range a.Readiness.Blockers {
			code := string(b.Code)
			if b.Count > 0 {
				code += "=" + strconv.Itoa(b.Count)
			}
			blockers = append(blockers, code)
		}
	}

	s := a.Summary
	return []string{
		a.ID,
		a.PlanID,
		a.RequirementSetID,
		a.ProgramVersion,
		a.ComputedAt.UTC().Format(time.RFC3339Nano),
		ready,
		strings.Join(blockers, ";"),
		strconv.Itoa(s.Satisfied),
		strconv.Itoa(s.Pending),
		strconv.Itoa(s.Missing),
		strconv.Itoa(s.Unknown),
		strconv.FormatFloat(s.PercentComplete, 'f', 4, 64),
		strconv.Itoa(s.CompletedCredits),
		strconv.Itoa(s.PendingCredits),
	}
}
