package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/div0rce/gradpath/pkg/audit"
	"github.com/div0rce/gradpath/pkg/config"
	"github.com/div0rce/gradpath/pkg/engine"
)

var base = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func testAudit(id, planID string, offset time.Duration) *audit.Audit {
	a := &audit.Audit{
		ID:               id,
		PlanID:           planID,
		RequirementSetID: "cs-bs-2024",
		ProgramVersion:   "2024",
		ComputedAt:       base.Add(offset),
		Summary:          audit.Summary{Satisfied: 1, Missing: 1, KnownCount: 2, TotalCount: 2, PercentComplete: 0.5},
		Requirements: []audit.RequirementResult{
			{NodeID: "intro", Status: audit.StatusSatisfied},
			{NodeID: "math", Status: audit.StatusMissing, Detail: &audit.Detail{
				MissingCourses: []string{"01:640:151"},
				Explanations:   []engine.ExplanationCode{engine.CodeRequirementIncomplete, engine.CodeRequiredCourseMissing},
			}},
		},
	}
	check := audit.Readiness(a, 0)
	a.Readiness = &check
	return a
}

type backend struct {
	name string
	open func(t *testing.T) audit.Storage
}

func sqliteBackend(driver string) backend {
	return backend{
		name: "sqlite/" + driver,
		open: func(t *testing.T) audit.Storage {
			t.Helper()
			cfg := DefaultSQLiteConfig()
			cfg.Path = filepath.Join(t.TempDir(), "audits.db")
			cfg.Driver = driver
			s, err := NewSQLiteStorage(cfg, nil)
			if err != nil {
				t.Fatalf("NewSQLiteStorage() error = %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(t *testing.T) audit.Storage { return NewMemoryStorage() }},
		sqliteBackend(DriverModernc),
		sqliteBackend(DriverMattn),
	}
}

func TestStorage_StoreGet(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			want := testAudit("a1", "plan-1", 0)

			if err := s.Store(ctx, want); err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			got, err := s.Get(ctx, "a1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, audit.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStorage_StoreReplaces(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()

			a := testAudit("a1", "plan-1", 0)
			if err := s.Store(ctx, a); err != nil {
				t.Fatal(err)
			}
			a.Summary.Satisfied = 2
			if err := s.Store(ctx, a); err != nil {
				t.Fatal(err)
			}

			n, _ := s.Count(ctx, nil)
			if n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}
			got, _ := s.Get(ctx, "a1")
			if got.Summary.Satisfied != 2 {
				t.Errorf("audit was not replaced: %+v", got.Summary)
			}
		})
	}
}

func TestStorage_ListAndLatest(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()

			for i, planID := range []string{"plan-1", "plan-2", "plan-1", "plan-1"} {
				id := fmt.Sprintf("a%d", i)
				if err := s.Store(ctx, testAudit(id, planID, time.Duration(i)*time.Hour)); err != nil {
					t.Fatal(err)
				}
			}

			latest, err := s.Latest(ctx, "plan-1")
			if err != nil {
				t.Fatalf("Latest() error = %v", err)
			}
			if latest.ID != "a3" {
				t.Errorf("Latest() = %s, want a3", latest.ID)
			}
			if _, err := s.Latest(ctx, "plan-9"); !errors.Is(err, audit.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			since := base.Add(time.Hour)
			until := base.Add(3 * time.Hour)
			tests := []struct {
				name  string
				query *audit.Query
				want  []string
			}{
				{name: "all", query: nil, want: []string{"a3", "a2", "a1", "a0"}},
				{name: "by plan", query: &audit.Query{PlanID: "plan-1"}, want: []string{"a3", "a2", "a0"}},
				{name: "by set", query: &audit.Query{RequirementSetID: "other"}, want: []string{}},
				{name: "time range", query: &audit.Query{Since: &since, Until: &until}, want: []string{"a2", "a1"}},
				{name: "paged", query: &audit.Query{Limit: 2, Offset: 1}, want: []string{"a2", "a1"}},
				{name: "offset past end", query: &audit.Query{Offset: 10}, want: []string{}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					audits, err := s.List(ctx, tt.query)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					got := []string{}
					for _, a := range audits {
						got = append(got, a.ID)
					}
					if diff := cmp.Diff(tt.want, got); diff != "" {
						t.Errorf("List() mismatch (-want +got):\n%s", diff)
					}
				})
			}

			n, err := s.Count(ctx, &audit.Query{PlanID: "plan-1", Limit: 1})
			if err != nil || n != 3 {
				t.Errorf("Count() = %d, %v; want 3", n, err)
			}

			var qe *audit.QueryError
			if _, err := s.List(ctx, &audit.Query{Limit: -1}); !errors.As(err, &qe) {
				t.Errorf("expected QueryError, got %v", err)
			}
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				if err := s.Store(ctx, testAudit(fmt.Sprintf("a%d", i), "plan-1", time.Duration(i)*24*time.Hour)); err != nil {
					t.Fatal(err)
				}
			}

			deleted, err := s.DeleteBefore(ctx, base.Add(48*time.Hour))
			if err != nil {
				t.Fatalf("DeleteBefore() error = %v", err)
			}
			if deleted != 2 {
				t.Errorf("DeleteBefore() = %d, want 2", deleted)
			}

			deleted, err = s.DeleteOldest(ctx, 2)
			if err != nil {
				t.Fatalf("DeleteOldest() error = %v", err)
			}
			if deleted != 1 {
				t.Errorf("DeleteOldest() = %d, want 1", deleted)
			}

			audits, _ := s.List(ctx, nil)
			if len(audits) != 2 || audits[0].ID != "a4" || audits[1].ID != "a3" {
				t.Errorf("unexpected survivors: %d", len(audits))
			}

			if _, err := s.DeleteOldest(ctx, -1); err == nil {
				t.Error("expected error for negative keep")
			}
			if n, _ := s.DeleteOldest(ctx, 10); n != 0 {
				t.Errorf("DeleteOldest() over count deleted %d", n)
			}
		})
	}
}

func TestStorage_Closed(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			err := s.Store(context.Background(), testAudit("a1", "plan-1", 0))
			var se *audit.StorageError
			if !errors.As(err, &se) {
				t.Errorf("expected StorageError after Close, got %v", err)
			}
		})
	}
}

func TestStorage_Concurrent(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if err := s.Store(ctx, testAudit(fmt.Sprintf("a%02d", i), "plan-1", time.Duration(i)*time.Minute)); err != nil {
						t.Errorf("Store() error = %v", err)
					}
				}(i)
			}
			wg.Wait()

			n, err := s.Count(ctx, nil)
			if err != nil || n != 20 {
				t.Errorf("Count() = %d, %v; want 20", n, err)
			}
		})
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	a := testAudit("a1", "plan-1", 0)
	if err := s.Store(ctx, a); err != nil {
		t.Fatal(err)
	}
	a.Requirements[1].Detail.MissingCourses[0] = "changed"

	got, _ := s.Get(ctx, "a1")
	if got.Requirements[1].Detail.MissingCourses[0] != "01:640:151" {
		t.Error("stored audit was mutated through the caller's pointer")
	}
}

func TestSQLiteConfig_DSN(t *testing.T) {
	tests := []struct {
		driver  string
		wal     bool
		want    string
		wantErr bool
	}{
		{driver: DriverModernc, wal: true, want: "db.sqlite?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"},
		{driver: DriverModernc, want: "db.sqlite?_pragma=busy_timeout(5000)"},
		{driver: DriverMattn, wal: true, want: "db.sqlite?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"},
		{driver: "postgres", wantErr: true},
	}
	for _, tt := range tests {
		cfg := &SQLiteConfig{Path: "db.sqlite", Driver: tt.driver, WALMode: tt.wal, BusyTimeout: 5 * time.Second}
		got, err := cfg.dsn()
		if (err != nil) != tt.wantErr {
			t.Errorf("dsn(%s) error = %v", tt.driver, err)
			continue
		}
		if got != tt.want {
			t.Errorf("dsn(%s) = %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AuditConfig
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: config.AuditConfig{Backend: "none"}, wantNil: true},
		{name: "memory", cfg: config.AuditConfig{Backend: "memory"}},
		{
			name: "sqlite in new directory",
			cfg: config.AuditConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "nested", "audits.db"), Driver: "sqlite",
				MaxOpenConns: 2, WALMode: true, BusyTimeout: time.Second,
			}},
		},
		{name: "unknown", cfg: config.AuditConfig{Backend: "redis"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (s == nil) != tt.wantNil {
				t.Fatalf("New() = %v, wantNil %v", s, tt.wantNil)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}
