package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteToTextfile writes the registry to path in the Prometheus text
// format, for the node_exporter textfile collector. The file is replaced
// atomically.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
