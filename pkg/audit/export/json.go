package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/div0rce/gradpath/pkg/audit"
)

// JSONExporter exports audits as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes audits to w. An empty input writes "[]".
func (e *JSONExporter) Export(ctx context.Context, audits []*audit.Audit, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if audits == nil {
		audits = []*audit.Audit{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(audits); err != nil {
		return audit.NewExportError("json", len(audits), err)
	}
	return nil
}
