package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/div0rce/gradpath/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and every gradpath metric group.
// All Record methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	engineMetrics       *EngineMetrics
	auditMetrics        *AuditMetrics
	requirementsMetrics *RequirementsMetrics

	// Requirement set IDs are label values; cap them.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:              cfg,
		registry:            registry,
		engineMetrics:       NewEngineMetrics(cfg, registry),
		auditMetrics:        NewAuditMetrics(cfg, registry),
		requirementsMetrics: NewRequirementsMetrics(cfg, registry),
		cardinalityLimiter:  NewCardinalityLimiter(1000),
	}
}

// RecordEvaluation records one rule evaluation.
//
// Example:
//
//	collector.RecordEvaluation("N_OF", "failed", 4, 35*time.Microsecond)
func (c *Collector) RecordEvaluation(kind, outcome string, nodes int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.engineMetrics.RecordEvaluation(kind, outcome, nodes, duration)
}

// RecordAudit records a completed audit. Requirement sets beyond the
// cardinality limit are aggregated under "other".
func (c *Collector) RecordAudit(setID string, ready bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow(fmt.Sprintf("audit:%s", setID)) {
		setID = "other"
	}

	c.auditMetrics.RecordAudit(setID, ready, duration)
}

// RecordRequirementStatus records one audited requirement by status.
func (c *Collector) RecordRequirementStatus(status string) {
	if !c.config.Enabled {
		return
	}

	c.auditMetrics.RecordRequirementStatus(status)
}

// RecordPruned records audits deleted by retention.
func (c *Collector) RecordPruned(count int64) {
	if !c.config.Enabled {
		return
	}

	c.auditMetrics.RecordPruned(count)
}

// RecordReload records a requirement registry reload.
func (c *Collector) RecordReload(success bool, sets, problems int) {
	if !c.config.Enabled {
		return
	}

	c.requirementsMetrics.RecordReload(success, sets, problems)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
