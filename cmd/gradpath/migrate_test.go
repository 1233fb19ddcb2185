package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	"github.com/div0rce/gradpath/pkg/dsl/legacy"
	"github.com/div0rce/gradpath/pkg/requirements"
)

// copyLegacySet copies the legacy fixture into a fresh directory.
func copyLegacySet(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/legacy/cs.yaml")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cs.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestMigrateRequirements(t *testing.T) {
	tests := []struct {
		name  string
		apply bool
	}{
		{name: "dry run", apply: false},
		{name: "apply", apply: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupApp(t, nil)
			dir := copyLegacySet(t)
			migrateFlags.dir = dir
			migrateFlags.apply = tt.apply

			cmd, buf := testCommand()
			if err := migrateRequirements(cmd, nil); err != nil {
				t.Fatalf("migrateRequirements() error = %v", err)
			}

			var got legacy.MigrationReport
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON report: %v\n%s", err, buf.String())
			}
			want := legacy.MigrationReport{AlreadyV2: 1, Apply: tt.apply, Converted: 1, Scanned: 3, Unsupported: 1}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("report mismatch (-want +got):\n%s", diff)
			}

			set, err := requirements.LoadFile(filepath.Join(dir, "cs.yaml"))
			if err != nil {
				t.Fatalf("reload migrated set: %v", err)
			}
			math, _ := set.Node("math")
			wantVersion := 1
			if tt.apply {
				wantVersion = 2
			}
			if v := legacy.SchemaVersion(math.Raw); v != wantVersion {
				t.Errorf("math rule schema version = %d, want %d", v, wantVersion)
			}
			if math.Rule.Kind != ast.KindNOf || math.Rule.N != 1 {
				t.Errorf("math rule = %+v", math.Rule)
			}

			count, _ := set.Node("legacy-count")
			if !count.Rule.IsUnsupported() {
				t.Error("unsupported legacy rule should be left alone")
			}
		})
	}
}

func TestMigrateRequirements_MissingDir(t *testing.T) {
	setupApp(t, nil)
	migrateFlags.dir = filepath.Join(t.TempDir(), "missing")
	migrateFlags.apply = false

	if err := migrateRequirements(nil, nil); err == nil {
		t.Error("migrateRequirements() should fail for a missing directory")
	}
}
