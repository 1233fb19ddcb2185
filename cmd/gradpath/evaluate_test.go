package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/div0rce/gradpath/pkg/cli"
)

func setEvaluateFlags(rule, evidence, evidenceFile, format string) {
	evaluateFlags.rule = rule
	evaluateFlags.evidence = evidence
	evaluateFlags.evidenceFile = evidenceFile
	evaluateFlags.format = format
	evaluateFlags.schema = false
}

func TestReadEvidence(t *testing.T) {
	tests := []struct {
		name    string
		inline  string
		file    string
		want    []string
		wantErr bool
	}{
		{
			name:   "commas and spaces",
			inline: "01:198:111, 01:198:112 01:640:151",
			want:   []string{"01:198:111", "01:198:112", "01:640:151"},
		},
		{
			name:   "duplicates collapse",
			inline: "01:198:111,01:198:111",
			want:   []string{"01:198:111"},
		},
		{
			name: "empty",
			want: []string{},
		},
		{
			name:    "token without code",
			inline:  "01:198:111,calculus",
			wantErr: true,
		},
		{
			name: "file with comments and text",
			file: "testdata/evidence.txt",
			want: []string{"01:198:111", "01:198:112"},
		},
		{
			name:    "missing file",
			file:    "testdata/missing.txt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readEvidence(tt.inline, tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readEvidence() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *cli.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigError, got %T", err)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got.Codes()); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateRule_JSON(t *testing.T) {
	setupApp(t, nil)
	setEvaluateFlags("testdata/rule.yaml", "01:198:111", "", "json")

	cmd, buf := testCommand()
	if err := evaluateRule(cmd, nil); err != nil {
		t.Fatalf("evaluateRule() error = %v", err)
	}

	var got struct {
		Type           string   `json:"type"`
		Satisfied      bool     `json:"satisfied"`
		Required       int      `json:"required"`
		SatisfiedCount int      `json:"satisfied_count"`
		MissingCourses []string `json:"missing_courses"`
		Children       []any    `json:"children"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}

	if got.Type != "N_OF" || got.Satisfied || got.Required != 2 || got.SatisfiedCount != 1 {
		t.Errorf("unexpected root: %+v", got)
	}
	if diff := cmp.Diff([]string{"01:198:112"}, got.MissingCourses); diff != "" {
		t.Errorf("missing courses (-want +got):\n%s", diff)
	}
	if len(got.Children) != 3 {
		t.Errorf("children = %d, want 3", len(got.Children))
	}
}

func TestEvaluateRule_Text(t *testing.T) {
	setupApp(t, nil)
	setEvaluateFlags("testdata/rule.yaml", "01:198:111,01:198:205", "", "text")

	cmd, buf := testCommand()
	if err := evaluateRule(cmd, nil); err != nil {
		t.Fatalf("evaluateRule() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"N_OF 2/2 ✓",
		"  01:198:112 ✗",
		"Outcome: satisfied",
		"REQUIREMENT_SATISFIED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Missing courses") {
		t.Errorf("satisfied rule should list no missing courses:\n%s", out)
	}
}

func TestEvaluateRule_LegacyUnsupported(t *testing.T) {
	setupApp(t, nil)
	setEvaluateFlags("testdata/legacy-rule.json", "01:198:111,01:198:205", "", "text")

	cmd, buf := testCommand()
	if err := evaluateRule(cmd, nil); err != nil {
		t.Fatalf("evaluateRule() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ALL_OF", "UNSUPPORTED ?", "Outcome: unsupported", "UNSUPPORTED_LEGACY_RULE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEvaluateRule_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		evidence string
		format   string
	}{
		{name: "no rule", format: "text"},
		{name: "bad format", rule: "testdata/rule.yaml", format: "xml"},
		{name: "bad evidence", rule: "testdata/rule.yaml", evidence: "intro", format: "text"},
		{name: "missing rule file", rule: "testdata/nope.yaml", format: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupApp(t, nil)
			setEvaluateFlags(tt.rule, tt.evidence, "", tt.format)

			cmd, _ := testCommand()
			if err := evaluateRule(cmd, nil); err == nil {
				t.Error("evaluateRule() expected error")
			}
		})
	}
}
