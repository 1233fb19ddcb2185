package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/div0rce/gradpath/pkg/audit"
	"github.com/div0rce/gradpath/pkg/audit/export"
	"github.com/div0rce/gradpath/pkg/config"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep audits.
	// 0 keeps audits forever.
	RetentionDays int

	// MaxRecords is the maximum number of audits to keep.
	// 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchivePath, when set, is a directory that receives a JSON export of
	// every audit before it is deleted.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: config.DefaultAuditRetentionDays,
		PruneSchedule: config.DefaultAuditRetentionSchedule,
	}
}

// FromConfig converts the file configuration.
func FromConfig(cfg config.RetentionConfig) *Config {
	return &Config{
		RetentionDays: cfg.Days,
		MaxRecords:    cfg.MaxRecords,
		PruneSchedule: cfg.PruneSchedule,
		ArchivePath:   cfg.ArchivePath,
	}
}

// Observer is told how many audits each prune removed.
type Observer interface {
	RecordPruned(count int64)
}

// Pruner enforces retention on stored audits.
type Pruner struct {
	storage   audit.Storage
	config    *Config
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, cfg *Config, logger *slog.Logger) *Pruner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  logger.With("component", "audit.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// SetObserver installs an observer for pruned counts.
func (p *Pruner) SetObserver(o Observer) {
	p.observer = o
}

// Prune deletes audits older than the retention period, then the oldest
// audits beyond the record limit. It returns the total deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, audit.NewRetentionError(p.config.RetentionDays, p.config.MaxRecords, fmt.Errorf("prune by age: %w", err))
		}
		total += deleted
		p.logger.Info("pruned audits by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, audit.NewRetentionError(p.config.RetentionDays, p.config.MaxRecords, fmt.Errorf("prune by count: %w", err))
		}
		total += deleted
		p.logger.Info("pruned audits by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if p.observer != nil {
		p.observer.RecordPruned(total)
	}

	if total == 0 {
		p.logger.Debug("no audits pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	p.logger.Debug("pruning by age", "cutoff_time", cutoff)

	if p.config.ArchivePath != "" {
		if err := p.archive(ctx, &audit.Query{Until: &cutoff, Limit: audit.MaxLimit}, "age"); err != nil {
			return 0, err
		}
	}
	return p.storage.DeleteBefore(ctx, cutoff)
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("count audits: %w", err)
	}
	if count <= p.config.MaxRecords {
		p.logger.Debug("audit count within limit", "current", count, "max", p.config.MaxRecords)
		return 0, nil
	}

	p.logger.Info("audit count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", count-p.config.MaxRecords,
	)

	if p.config.ArchivePath != "" {
		query := &audit.Query{Offset: int(p.config.MaxRecords), Limit: audit.MaxLimit}
		if err := p.archive(ctx, query, "count"); err != nil {
			return 0, err
		}
	}
	return p.storage.DeleteOldest(ctx, p.config.MaxRecords)
}

// archive writes the audits matching query to a timestamped JSON file.
func (p *Pruner) archive(ctx context.Context, query *audit.Query, phase string) error {
	audits, err := p.storage.List(ctx, query)
	if err != nil {
		return fmt.Errorf("list audits to archive: %w", err)
	}
	if len(audits) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	name := fmt.Sprintf("audits-%s-%s.json", phase, p.now().UTC().Format("20060102-150405"))
	path := filepath.Join(p.config.ArchivePath, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).Export(ctx, audits, f); err != nil {
		return err
	}

	p.logger.Info("audits archived", "archive_file", path, "count", len(audits))
	return nil
}

// Start starts the pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
