package legacy

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestMap_V2Shapes(t *testing.T) {
	raw := decode(t, `{
		"type": "ALL_OF",
		"children": [
			{"type": "COURSE_SET", "courses": ["14:540:100"]},
			{"type": "N_OF", "n": 1, "children": [{"type": "COURSE_SET", "courses": ["14:540:300"]}]},
			{"type": "COUNT_MIN", "min_count": 1, "children": [{"type": "COURSE_SET", "courses": ["14:540:400"]}]}
		]
	}`)

	want := ast.AllOf(
		ast.CourseSet("14:540:100"),
		ast.NOf(1, ast.CourseSet("14:540:300")),
		ast.CountMin(1, ast.CourseSet("14:540:400")),
	)
	if diff := cmp.Diff(want, Map(raw)); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_LegacyShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *ast.Node
	}{
		{
			name: "course",
			raw:  `{"course": "14:540:100"}`,
			want: ast.CourseSet("14:540:100"),
		},
		{
			name: "all of courses",
			raw:  `{"all": [{"course": "14:540:100"}, {"course": "14:540:200"}]}`,
			want: ast.AllOf(ast.CourseSet("14:540:100"), ast.CourseSet("14:540:200")),
		},
		{
			name: "any maps to n of one",
			raw:  `{"any": [{"course": "14:540:100"}, {"course": "14:540:200"}]}`,
			want: ast.NOf(1, ast.CourseSet("14:540:100"), ast.CourseSet("14:540:200")),
		},
		{
			name: "any with bare strings",
			raw:  `{"any": ["14:540:100", "14:540:200", "14:540:300"]}`,
			want: ast.NOf(1, ast.CourseSet("14:540:100"), ast.CourseSet("14:540:200"), ast.CourseSet("14:540:300")),
		},
		{
			name: "nested legacy inside v2",
			raw:  `{"type": "ALL_OF", "children": [{"any": ["14:540:100"]}]}`,
			want: ast.AllOf(ast.NOf(1, ast.CourseSet("14:540:100"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Map(decode(t, tt.raw))); diff != "" {
				t.Errorf("Map() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMap_UnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "count at least", raw: `{"countAtLeast": {"count": 1, "of": [{"course": "14:540:100"}]}}`},
		{name: "unknown type", raw: `{"type": "CREDIT_MIN", "min_credits": 12}`},
		{name: "non-string type", raw: `{"type": 3}`},
		{name: "extra legacy key", raw: `{"any": ["14:540:100"], "note": "x"}`},
		{name: "empty any", raw: `{"any": []}`},
		{name: "any not a list", raw: `{"any": "14:540:100"}`},
		{name: "course not a string", raw: `{"course": 100}`},
		{name: "empty object", raw: `{}`},
		{name: "number", raw: `42`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decode(t, tt.raw)
			node := Map(raw)
			if node.Kind != ast.KindUnsupported {
				t.Fatalf("Map() kind = %s, want UNSUPPORTED", node.Kind)
			}
			if node.Reason == "" {
				t.Error("expected a reason on unsupported node")
			}
			if diff := cmp.Diff(raw, node.Source); diff != "" {
				t.Errorf("Source does not keep the original shape (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMap_PoisonIsNodeLocal(t *testing.T) {
	raw := decode(t, `{"any": [{"course": "14:540:100"}, {"countAtLeast": {"count": 1, "of": []}}]}`)
	node := Map(raw)

	if node.Kind != ast.KindNOf || len(node.Children) != 2 {
		t.Fatalf("expected N_OF with two children, got %s with %d", node.Kind, len(node.Children))
	}
	if node.Children[0].Kind != ast.KindCourseSet {
		t.Errorf("first child kind = %s, want COURSE_SET", node.Children[0].Kind)
	}
	if node.Children[1].Kind != ast.KindUnsupported {
		t.Errorf("second child kind = %s, want UNSUPPORTED", node.Children[1].Kind)
	}
}

func TestMap_BadParametersAreLeftForValidator(t *testing.T) {
	node := Map(decode(t, `{"type": "N_OF", "n": 1.5, "children": "nope"}`))
	if node.Kind != ast.KindNOf {
		t.Fatalf("kind = %s, want N_OF", node.Kind)
	}
	if node.N != 0 || node.Children != nil {
		t.Errorf("expected zero n and nil children, got n=%d children=%v", node.N, node.Children)
	}

	countMin := Map(decode(t, `{"type": "COUNT_MIN", "min_count": 1, "courses": [], "children": ["14:540:100"]}`))
	if countMin.Courses == nil {
		t.Error("expected present-but-empty courses shortcut to be kept")
	}

	yamlInt := Map(map[string]any{"type": "N_OF", "n": 2, "children": []any{"14:540:100", "14:540:200"}})
	if yamlInt.N != 2 {
		t.Errorf("N = %d, want 2", yamlInt.N)
	}
}

func TestSchemaVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: `{"course": "14:540:100"}`, want: 1},
		{raw: `{"type": "COURSE_SET", "courses": ["14:540:100"]}`, want: 2},
		{raw: `{"type": "COUNT_MIN", "min_count": 1, "children": []}`, want: 2},
		{raw: `{"type": 2}`, want: 1},
		{raw: `"14:540:100"`, want: 1},
	}
	for _, tt := range tests {
		if got := SchemaVersion(decode(t, tt.raw)); got != tt.want {
			t.Errorf("SchemaVersion(%s) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestMigrate(t *testing.T) {
	rules := []Rule{
		{ID: "core", Raw: decode(t, `{"all": [{"course": "14:540:100"}, {"course": "14:540:200"}]}`)},
		{ID: "elective", Raw: decode(t, `{"any": [{"course": "14:540:300"}]}`)},
		{ID: "v2", Raw: decode(t, `{"type": "COURSE_SET", "courses": ["14:540:100"]}`)},
		{ID: "count", Raw: decode(t, `{"countAtLeast": {"count": 1, "of": [{"course": "14:540:100"}]}}`)},
	}

	dry := Migrate(rules, false)
	if dry.Scanned != 4 || dry.AlreadyV2 != 1 || dry.Converted != 2 || dry.Unsupported != 1 {
		t.Errorf("unexpected dry-run counts: %+v", dry)
	}
	if len(dry.Rules) != 0 {
		t.Error("dry run should not return converted rules")
	}

	applied := Migrate(rules, true)
	if len(applied.Rules) != 2 || applied.Rules[0].ID != "core" || applied.Rules[1].ID != "elective" {
		t.Fatalf("unexpected applied rules: %+v", applied.Rules)
	}
	wantCore := map[string]any{
		"type": "ALL_OF",
		"children": []any{
			map[string]any{"type": "COURSE_SET", "courses": []any{"14:540:100"}},
			map[string]any{"type": "COURSE_SET", "courses": []any{"14:540:200"}},
		},
	}
	if diff := cmp.Diff(wantCore, applied.Rules[0].Rule); diff != "" {
		t.Errorf("converted rule mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(applied)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	want := `{"already_v2":1,"apply":true,"converted":2,"scanned":4,"unsupported":1}`
	if string(out) != want {
		t.Errorf("report JSON = %s, want %s", out, want)
	}
}
