package retention

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/div0rce/gradpath/pkg/audit"
	"github.com/div0rce/gradpath/pkg/audit/storage"
	"github.com/div0rce/gradpath/pkg/config"
	"github.com/div0rce/gradpath/pkg/telemetry/logging"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

// seed stores one audit per day, the newest computed at now.
func seed(t *testing.T, s audit.Storage, days int) {
	t.Helper()
	for i := 0; i < days; i++ {
		a := &audit.Audit{
			ID:         fmt.Sprintf("a%02d", i),
			PlanID:     "plan-1",
			ComputedAt: now.AddDate(0, 0, -i),
		}
		if err := s.Store(context.Background(), a); err != nil {
			t.Fatal(err)
		}
	}
}

func newPruner(t *testing.T, s audit.Storage, cfg *Config) *Pruner {
	t.Helper()
	p := NewPruner(s, cfg, logging.Discard())
	p.now = func() time.Time { return now }
	return p
}

type prunedCounter struct{ total int64 }

func (c *prunedCounter) RecordPruned(n int64) { c.total += n }

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantDeleted int64
		wantLeft    int64
	}{
		{name: "keep forever", config: &Config{}, wantDeleted: 0, wantLeft: 10},
		{name: "by age", config: &Config{RetentionDays: 7}, wantDeleted: 2, wantLeft: 8},
		{name: "by count", config: &Config{MaxRecords: 4}, wantDeleted: 6, wantLeft: 4},
		{name: "age then count", config: &Config{RetentionDays: 5, MaxRecords: 3}, wantDeleted: 7, wantLeft: 3},
		{name: "count within limit", config: &Config{MaxRecords: 50}, wantDeleted: 0, wantLeft: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewMemoryStorage()
			seed(t, s, 10)
			counter := &prunedCounter{}
			p := newPruner(t, s, tt.config)
			p.SetObserver(counter)

			deleted, err := p.Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() = %d, want %d", deleted, tt.wantDeleted)
			}
			if counter.total != tt.wantDeleted {
				t.Errorf("observer saw %d, want %d", counter.total, tt.wantDeleted)
			}
			left, _ := s.Count(context.Background(), nil)
			if left != tt.wantLeft {
				t.Errorf("left = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestPruner_Archive(t *testing.T) {
	s := storage.NewMemoryStorage()
	seed(t, s, 10)
	dir := filepath.Join(t.TempDir(), "archive")

	p := newPruner(t, s, &Config{RetentionDays: 7, MaxRecords: 5, ArchivePath: dir})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 5 {
		t.Fatalf("Prune() = %d, want 5", deleted)
	}

	archived := 0
	for _, name := range []string{"audits-age-20240630-120000.json", "audits-count-20240630-120000.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("archive %s: %v", name, err)
		}
		var audits []audit.Audit
		if err := json.Unmarshal(data, &audits); err != nil {
			t.Fatalf("archive %s is not a JSON array: %v", name, err)
		}
		archived += len(audits)
	}
	if archived != 5 {
		t.Errorf("archived %d audits, want 5", archived)
	}
}

func TestPruner_StorageError(t *testing.T) {
	s := storage.NewMemoryStorage()
	s.Close()

	_, err := newPruner(t, s, &Config{RetentionDays: 1}).Prune(context.Background())
	var re *audit.RetentionError
	if !errors.As(err, &re) || re.RetentionDays != 1 {
		t.Errorf("expected RetentionError, got %v", err)
	}
	var se *audit.StorageError
	if !errors.As(err, &se) {
		t.Errorf("expected wrapped StorageError, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetentionConfig{Days: 30, MaxRecords: 100, PruneSchedule: "0 * * * *", ArchivePath: "arch"})
	if cfg.RetentionDays != 30 || cfg.MaxRecords != 100 || cfg.PruneSchedule != "0 * * * *" || cfg.ArchivePath != "arch" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if d := DefaultConfig(); d.RetentionDays != config.DefaultAuditRetentionDays {
		t.Errorf("DefaultConfig().RetentionDays = %d", d.RetentionDays)
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "valid daily schedule", schedule: "0 3 * * *", wantRunning: true},
		{name: "valid hourly schedule", schedule: "0 * * * *", wantRunning: true},
		{name: "empty schedule", schedule: ""},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPruner(t, storage.NewMemoryStorage(), &Config{PruneSchedule: tt.schedule, RetentionDays: 90})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := p.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if p.scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", p.scheduler.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning {
				next := p.NextPruning()
				if next == nil || !next.After(time.Now()) {
					t.Errorf("NextPruning() = %v", next)
				}
				if err := p.Start(ctx); err == nil {
					t.Error("second Start() should fail")
				}
			}
			p.Stop()
			if p.scheduler.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	p := newPruner(t, storage.NewMemoryStorage(), &Config{PruneSchedule: "0 3 * * *"})
	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for p.scheduler.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not stop after cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
