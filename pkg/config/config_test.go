package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gradpath.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Requirements.Dir != DefaultRequirementsDir {
		t.Errorf("expected requirements dir %q, got %q", DefaultRequirementsDir, cfg.Requirements.Dir)
	}
	if !cfg.Audit.SQLite.WALMode {
		t.Error("expected WAL mode enabled by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Server.ListenAddress != "" || cfg.Server.ShutdownTimeout != DefaultServerShutdownTimeout {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Audit.SQLite.Driver != "sqlite" {
		t.Errorf("expected driver sqlite, got %q", cfg.Audit.SQLite.Driver)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
requirements:
  dir: "./sets"
  schema_validation: true
  debounce_delay: "250ms"

audit:
  backend: "sqlite"
  sqlite:
    path: "./audits.db"
    driver: "sqlite3"
    wal_mode: false
  retention:
    days: 30
    max_records: 1000

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Requirements.Dir != "./sets" {
		t.Errorf("expected dir %q, got %q", "./sets", cfg.Requirements.Dir)
	}
	if !cfg.Requirements.SchemaValidation {
		t.Error("expected schema validation enabled")
	}
	if cfg.Requirements.DebounceDelay != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", cfg.Requirements.DebounceDelay)
	}
	if cfg.Audit.SQLite.WALMode {
		t.Error("expected WAL mode disabled by the file")
	}
	if cfg.Audit.SQLite.Driver != "sqlite3" {
		t.Errorf("expected driver sqlite3, got %q", cfg.Audit.SQLite.Driver)
	}
	if cfg.Audit.Retention.MaxRecords != 1000 {
		t.Errorf("expected max records 1000, got %d", cfg.Audit.Retention.MaxRecords)
	}
	if cfg.Audit.SQLite.BusyTimeout != DefaultAuditSQLiteBusyTimeout {
		t.Errorf("expected default busy timeout, got %v", cfg.Audit.SQLite.BusyTimeout)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("expected json logging, got %q", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if cfg.Audit.Backend != DefaultAuditBackend {
		t.Errorf("expected default backend, got %q", cfg.Audit.Backend)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "audit: [",
			wantErr: "failed to parse",
		},
		{
			name:    "bad backend",
			content: "audit:\n  backend: postgres\n",
			wantErr: "audit.backend",
		},
		{
			name:    "bad cron",
			content: "audit:\n  retention:\n    prune_schedule: \"not a schedule\"\n",
			wantErr: "audit.retention.prune_schedule",
		},
		{
			name:    "parallel of one",
			content: "engine:\n  parallel_min_children: 1\n",
			wantErr: "engine.parallel_min_children",
		},
		{
			name:    "otlp without endpoint",
			content: "telemetry:\n  tracing:\n    enabled: true\n",
			wantErr: "telemetry.tracing.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Audit.Backend = "s3"
	cfg.Telemetry.Logging.Level = "verbose"
	cfg.Telemetry.Tracing.SampleRatio = 2
	cfg.Server.ListenAddress = "9464"

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(verr.Errors), verr)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "audit:\n  sqlite:\n    path: \"./file.db\"\n")

	t.Setenv("GRADPATH_AUDIT_SQLITE_PATH", "/tmp/env.db")
	t.Setenv("GRADPATH_AUDIT_BACKEND", "memory")
	t.Setenv("GRADPATH_REQUIREMENTS_EXTENSIONS", ".yaml,.json")
	t.Setenv("GRADPATH_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("GRADPATH_AUDIT_SQLITE_BUSY_TIMEOUT", "2s")
	t.Setenv("GRADPATH_SERVER_LISTEN_ADDRESS", "127.0.0.1:9464")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Audit.SQLite.Path != "/tmp/env.db" {
		t.Errorf("expected env path, got %q", cfg.Audit.SQLite.Path)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Audit.Backend)
	}
	if len(cfg.Requirements.Extensions) != 2 || cfg.Requirements.Extensions[1] != ".json" {
		t.Errorf("unexpected extensions %v", cfg.Requirements.Extensions)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected warn level, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Audit.SQLite.BusyTimeout != 2*time.Second {
		t.Errorf("expected 2s busy timeout, got %v", cfg.Audit.SQLite.BusyTimeout)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9464" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if !cfg.Audit.SQLite.WALMode {
		t.Error("unset variables must not clear loaded values")
	}
}

func TestLoadConfigWithEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("GRADPATH_TELEMETRY_LOGGING_FORMAT", "xml")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil || !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("expected post-override validation error, got %v", err)
	}
}
