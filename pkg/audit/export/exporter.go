package export

import (
	"fmt"

	"github.com/div0rce/gradpath/pkg/audit"
)

// New returns the exporter for a format name: "json" or "csv".
func New(format string, pretty bool) (audit.Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONExporter(pretty), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unknown export format %q: must be 'json' or 'csv'", format)
	}
}
