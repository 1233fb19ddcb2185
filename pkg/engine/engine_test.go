package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
)

const (
	courseX = "14:540:100"
	courseY = "14:540:200"
	courseZ = "14:540:300"
)

func TestEvaluate(t *testing.T) {
	x, y, z := ast.CourseSet(courseX), ast.CourseSet(courseY), ast.CourseSet(courseZ)

	tests := []struct {
		name            string
		rule            *ast.Node
		evidence        EvidenceSet
		wantSatisfied   bool
		wantUnsupported bool
		wantCount       int
	}{
		{name: "leaf hit", rule: x, evidence: NewEvidenceSet(courseX), wantSatisfied: true, wantCount: 1},
		{name: "leaf miss", rule: x, evidence: NewEvidenceSet(courseY)},
		{name: "leaf is exact match", rule: x, evidence: NewEvidenceSet(" 14:540:100")},
		{name: "all of complete", rule: ast.AllOf(x, y), evidence: NewEvidenceSet(courseX, courseY), wantSatisfied: true, wantCount: 2},
		{name: "all of partial", rule: ast.AllOf(x, y), evidence: NewEvidenceSet(courseX), wantCount: 1},
		{name: "n of met", rule: ast.NOf(2, x, y, z), evidence: NewEvidenceSet(courseX, courseZ), wantSatisfied: true, wantCount: 2},
		{name: "n of short", rule: ast.NOf(2, x, y, z), evidence: NewEvidenceSet(courseZ), wantCount: 1},
		{name: "count min met", rule: ast.CountMin(1, x, y), evidence: NewEvidenceSet(courseY), wantSatisfied: true, wantCount: 1},
		{
			name:            "unsupported poisons satisfied siblings",
			rule:            ast.NOf(1, x, ast.Unsupported(map[string]any{"countAtLeast": 1}, "no mapping")),
			evidence:        NewEvidenceSet(courseX),
			wantUnsupported: true,
			wantCount:       1,
		},
		{name: "unknown kind", rule: &ast.Node{Kind: "CREDIT_MIN"}, evidence: nil, wantUnsupported: true},
		{name: "multi course leaf", rule: ast.CourseSet(courseX, courseY), evidence: NewEvidenceSet(courseX), wantUnsupported: true},
		{name: "nil child", rule: ast.AllOf(x, nil), evidence: NewEvidenceSet(courseX), wantUnsupported: true, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rule, tt.evidence)
			if got.Satisfied != tt.wantSatisfied {
				t.Errorf("Satisfied = %v, want %v", got.Satisfied, tt.wantSatisfied)
			}
			if got.Unsupported != tt.wantUnsupported {
				t.Errorf("Unsupported = %v, want %v", got.Unsupported, tt.wantUnsupported)
			}
			if got.SatisfiedCount != tt.wantCount {
				t.Errorf("SatisfiedCount = %d, want %d", got.SatisfiedCount, tt.wantCount)
			}
		})
	}
}

func TestEvaluate_DoesNotShortCircuit(t *testing.T) {
	rule := ast.AllOf(ast.CourseSet(courseX), ast.CourseSet(courseY), ast.CourseSet(courseZ))
	got := Evaluate(rule, NewEvidenceSet(courseZ))

	if len(got.Children) != 3 {
		t.Fatalf("expected all 3 children evaluated, got %d", len(got.Children))
	}
	for i, child := range got.Children {
		if child.Node != rule.Children[i] {
			t.Errorf("child %d out of stored order", i)
		}
	}
	if !got.Children[2].Satisfied {
		t.Error("child after the first failure was not evaluated")
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	rule := ast.NOf(1, ast.CourseSet(courseX), ast.AllOf(ast.CourseSet(courseY)))
	before := rule.Clone()
	evidence := NewEvidenceSet(courseY)

	Run(rule, evidence)

	if diff := cmp.Diff(before, rule); diff != "" {
		t.Errorf("rule mutated (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff([]string{courseY}, evidence.Codes()); diff != "" {
		t.Errorf("evidence mutated (-before +after):\n%s", diff)
	}
}

func TestEvaluator_ParallelMatchesSequential(t *testing.T) {
	children := make([]*ast.Node, 0, 12)
	codes := []string{"01:198:111", "01:198:112", "01:198:205", "01:198:206", "01:198:211", "01:198:314"}
	for _, code := range codes {
		children = append(children, ast.CourseSet(code))
		children = append(children, ast.NOf(1, ast.CourseSet(code), ast.CourseSet(courseX)))
	}
	rule := ast.CountMin(9, children...)
	evidence := NewEvidenceSet("01:198:111", "01:198:206", "01:198:314")

	seq, err := json.Marshal(NewEvaluator().Run(rule, evidence))
	if err != nil {
		t.Fatal(err)
	}
	par, err := json.Marshal(NewEvaluator(WithParallel(2)).Run(rule, evidence))
	if err != nil {
		t.Fatal(err)
	}
	if string(seq) != string(par) {
		t.Errorf("parallel result differs:\nseq: %s\npar: %s", seq, par)
	}
}

func TestFinalize_Codes(t *testing.T) {
	x, y, z := ast.CourseSet(courseX), ast.CourseSet(courseY), ast.CourseSet(courseZ)

	tests := []struct {
		name        string
		rule        *ast.Node
		evidence    EvidenceSet
		wantCodes   []ExplanationCode
		wantMissing []string
	}{
		{
			name:      "satisfied leaf",
			rule:      x,
			evidence:  NewEvidenceSet(courseX),
			wantCodes: []ExplanationCode{CodeRequirementSatisfied},
		},
		{
			name:        "missing leaf",
			rule:        x,
			wantCodes:   []ExplanationCode{CodeRequirementIncomplete, CodeRequiredCourseMissing},
			wantMissing: []string{courseX},
		},
		{
			name:        "failed all of inherits leaf code",
			rule:        ast.AllOf(z, x, y),
			evidence:    NewEvidenceSet(courseX),
			wantCodes:   []ExplanationCode{CodeRequirementIncomplete, CodeRequiredCourseMissing},
			wantMissing: []string{courseY, courseZ},
		},
		{
			name:      "unsupported",
			rule:      ast.AllOf(x, ast.Unsupported(nil, "rule node is null")),
			evidence:  NewEvidenceSet(courseX),
			wantCodes: []ExplanationCode{CodeUnsupportedLegacyRule},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Run(tt.rule, tt.evidence)
			if diff := cmp.Diff(tt.wantCodes, got.ExplanationCodes); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMissing, got.MissingCourses); diff != "" {
				t.Errorf("missing courses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFinalize_PanicsOnUnevaluated(t *testing.T) {
	tests := []struct {
		name string
		in   *EvaluatedNode
	}{
		{name: "nil", in: nil},
		{name: "hand built", in: &EvaluatedNode{Node: ast.CourseSet(courseX), Satisfied: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			Finalize(tt.in)
		})
	}
}

func TestFinalizedNode_MarshalJSON(t *testing.T) {
	rule := ast.NOf(2, ast.CourseSet(courseX), ast.CourseSet(courseY), ast.CourseSet(courseZ))
	data, err := json.Marshal(Run(rule, NewEvidenceSet(courseX)))
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	if got["type"] != "N_OF" || got["satisfied"] != false || got["required"] != float64(2) || got["satisfied_count"] != float64(1) {
		t.Errorf("unexpected header fields: %s", data)
	}
	wantWitness := []any{map[string]any{"type": "COURSE_SET", "courses": []any{courseY}}}
	if diff := cmp.Diff(wantWitness, got["witness"]); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{courseY}, got["missing_courses"]); diff != "" {
		t.Errorf("missing_courses mismatch (-want +got):\n%s", diff)
	}
	children, ok := got["children"].([]any)
	if !ok || len(children) != 3 {
		t.Fatalf("expected 3 children, got %v", got["children"])
	}
	first := children[0].(map[string]any)
	if diff := cmp.Diff([]any{}, first["witness"]); diff != "" {
		t.Errorf("leaf witness should be an empty list (-want +got):\n%s", diff)
	}
}

func TestEvaluateRule(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		evidence        EvidenceSet
		wantOutcome     Outcome
		wantUnsupported bool
	}{
		{name: "legacy any", raw: `{"any": ["14:540:100", "14:540:200"]}`, evidence: NewEvidenceSet(courseY), wantOutcome: OutcomeSatisfied},
		{name: "legacy count at least", raw: `{"countAtLeast": {"count": 1, "of": ["14:540:100"]}}`, evidence: NewEvidenceSet(courseX), wantOutcome: OutcomeUnsupported},
		{name: "invalid bound quarantined", raw: `{"type": "N_OF", "n": 4, "children": ["14:540:100"]}`, evidence: NewEvidenceSet(courseX), wantOutcome: OutcomeUnsupported},
		{name: "v2 failed", raw: `{"type": "ALL_OF", "children": ["14:540:100", "14:540:200"]}`, evidence: NewEvidenceSet(courseX), wantOutcome: OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw any
			if err := json.Unmarshal([]byte(tt.raw), &raw); err != nil {
				t.Fatal(err)
			}
			if got := EvaluateRule(raw, tt.evidence).Outcome(); got != tt.wantOutcome {
				t.Errorf("Outcome() = %s, want %s", got, tt.wantOutcome)
			}
		})
	}
}

func TestEvidenceSet(t *testing.T) {
	a := NewEvidenceSet(courseY, courseX)
	b := NewEvidenceSet(courseZ)
	u := a.Union(b)

	if diff := cmp.Diff([]string{courseX, courseY, courseZ}, u.Codes()); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}
	if a.Has(courseZ) {
		t.Error("Union modified its receiver")
	}

	var empty EvidenceSet
	if empty.Has(courseX) {
		t.Error("zero value set should be empty")
	}

	fn := EvidenceFunc(func(code string) bool { return code == courseX })
	if !Run(ast.CourseSet(courseX), fn).Satisfied {
		t.Error("EvidenceFunc not consulted")
	}
}

func TestSortCodes(t *testing.T) {
	got := SortCodes([]ExplanationCode{
		"ZZZ_EXTERNAL",
		CodeRequiredCourseMissing,
		CodeRequiredCourseMissing,
		"AAA_EXTERNAL",
	})
	want := []ExplanationCode{
		CodeRequiredCourseMissing,
		"AAA_EXTERNAL",
		"ZZZ_EXTERNAL",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SortCodes mismatch (-want +got):\n%s", diff)
	}
}

func TestExplanationPriority_ContextualOnly(t *testing.T) {
	for _, code := range []ExplanationCode{CodeUnsupportedLegacyRule, CodeRequirementSatisfied, CodeRequirementIncomplete} {
		if _, ok := ExplanationPriority[code]; ok {
			t.Errorf("%s is placed by explain and must not be ranked", code)
		}
	}

	got := Run(ast.NOf(2, ast.CourseSet(courseX), ast.CourseSet(courseY)), NewEvidenceSet()).ExplanationCodes
	want := []ExplanationCode{CodeRequirementIncomplete, CodeRequiredCourseMissing}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("failed node codes mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_MalformedCardinalityFailsClosed(t *testing.T) {
	x, y := ast.CourseSet(courseX), ast.CourseSet(courseY)

	tests := []struct {
		name string
		rule *ast.Node
	}{
		{name: "all of without children", rule: ast.AllOf()},
		{name: "n of zero", rule: ast.NOf(0, x)},
		{name: "n of above children", rule: ast.NOf(3, x, y)},
		{name: "count min zero", rule: ast.CountMin(0, x, y)},
		{name: "count min without children", rule: ast.CountMin(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Run(tt.rule, NewEvidenceSet(courseX, courseY))
			if got.Satisfied || !got.Unsupported {
				t.Errorf("Satisfied = %v, Unsupported = %v; want unsupported", got.Satisfied, got.Unsupported)
			}
			if diff := cmp.Diff([]ExplanationCode{CodeUnsupportedLegacyRule}, got.ExplanationCodes); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
			if len(got.Witness) != 0 {
				t.Errorf("unsupported node has witness %v", got.Witness)
			}
		})
	}

	root := Run(ast.AllOf(x, ast.NOf(0, y)), NewEvidenceSet(courseX, courseY))
	if !root.Unsupported || root.Satisfied {
		t.Error("malformed child must poison its parent")
	}
}

func TestEvaluate_NilEvidenceFunc(t *testing.T) {
	var fn EvidenceFunc
	got := Run(ast.NOf(1, ast.CourseSet(courseX)), fn)
	if got.Satisfied || got.Unsupported {
		t.Errorf("nil EvidenceFunc should act as empty evidence, got satisfied=%v unsupported=%v", got.Satisfied, got.Unsupported)
	}
}
