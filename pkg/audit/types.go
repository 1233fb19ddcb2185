package audit

import (
	"strings"
	"time"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	"github.com/div0rce/gradpath/pkg/engine"
)

// ItemStatus is the catalog validity of a plan item.
type ItemStatus string

const (
	ItemValid   ItemStatus = "VALID"
	ItemInvalid ItemStatus = "INVALID"
	ItemDraft   ItemStatus = "DRAFT"
)

// Completion is how far a student got with a plan item.
type Completion string

const (
	CompletionYes        Completion = "YES"
	CompletionInProgress Completion = "IN_PROGRESS"
	CompletionNo         Completion = "NO"
	CompletionBlank      Completion = "BLANK"
)

// RequirementStatus is the audited state of one requirement node.
type RequirementStatus string

const (
	// StatusSatisfied: met by completed courses.
	StatusSatisfied RequirementStatus = "SATISFIED"
	// StatusPending: met once in-progress courses complete.
	StatusPending RequirementStatus = "PENDING"
	// StatusMissing: not met even counting in-progress courses.
	StatusMissing RequirementStatus = "MISSING"
	// StatusUnknown: the rule is unsupported and cannot be judged.
	StatusUnknown RequirementStatus = "UNKNOWN"
)

// ReasonUnsupportedRule is the detail reason of an UNKNOWN requirement.
const ReasonUnsupportedRule = "UNSUPPORTED_RULE"

// Plan is a student's degree plan.
type Plan struct {
	ID               string     `yaml:"id" json:"id"`
	RequirementSetID string     `yaml:"requirement_set" json:"requirement_set"`
	Items            []PlanItem `yaml:"items" json:"items"`
}

// PlanItem is one course entry of a plan. Code is free text; the canonical
// course code is extracted from it.
type PlanItem struct {
	Code       string     `yaml:"code" json:"code"`
	Status     ItemStatus `yaml:"status" json:"status"`
	Completion Completion `yaml:"completion" json:"completion"`
	Credits    int        `yaml:"credits" json:"credits"`
}

// CanonicalCode returns the canonical course code found in Code.
func (i PlanItem) CanonicalCode() (string, bool) {
	return ast.ExtractCanonicalCourseCode(strings.TrimSpace(i.Code))
}

// InvalidItems returns the number of items marked INVALID.
func (p *Plan) InvalidItems() int {
	n := 0
	for _, item := range p.Items {
		if item.Status == ItemInvalid {
			n++
		}
	}
	return n
}

// Detail explains a non-satisfied requirement.
type Detail struct {
	Reason         string                   `json:"reason,omitempty"`
	MissingCourses []string                 `json:"missing_courses,omitempty"`
	Explanations   []engine.ExplanationCode `json:"explanations"`
}

// RequirementResult is the audited state of one requirement node.
type RequirementResult struct {
	NodeID string            `json:"node_id"`
	Title  string            `json:"title,omitempty"`
	Status RequirementStatus `json:"status"`
	Detail *Detail           `json:"detail,omitempty"`
}

// Summary aggregates an audit.
type Summary struct {
	CompletedCredits int `json:"completed_credits"`
	PendingCredits   int `json:"pending_credits"`

	Satisfied int `json:"satisfied_requirements"`
	Pending   int `json:"pending_requirements"`
	Missing   int `json:"missing_requirements"`
	Unknown   int `json:"unknown_requirements"`

	// PercentComplete is Satisfied over KnownCount, 0 when nothing is known.
	PercentComplete float64 `json:"percent_complete"`

	// KnownCount excludes UNKNOWN requirements.
	KnownCount int `json:"known_requirement_count"`
	TotalCount int `json:"total_requirement_count"`
}

// Audit is a degree audit of one plan against one requirement set.
type Audit struct {
	ID               string    `json:"id"`
	PlanID           string    `json:"plan_id"`
	RequirementSetID string    `json:"requirement_set_id"`
	ProgramVersion   string    `json:"program_version,omitempty"`
	ComputedAt       time.Time `json:"computed_at"`

	HasUnsupportedRules bool `json:"has_unsupported_rules"`

	Summary      Summary             `json:"summary"`
	Requirements []RequirementResult `json:"requirements"`

	// Readiness is filled in by Auditor.Run.
	Readiness *ReadyCheck `json:"readiness,omitempty"`
}

// Requirement returns the result for the given requirement node.
func (a *Audit) Requirement(nodeID string) (RequirementResult, bool) {
	for _, r := range a.Requirements {
		if r.NodeID == nodeID {
			return r, true
		}
	}
	return RequirementResult{}, false
}
