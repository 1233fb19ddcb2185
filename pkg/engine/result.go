package engine

import (
	"encoding/json"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
)

// finalizedJSON is the serialized projection of a FinalizedNode.
type finalizedJSON struct {
	Type             ast.Kind          `json:"type"`
	Courses          []string          `json:"courses,omitempty"`
	Satisfied        bool              `json:"satisfied"`
	Unsupported      bool              `json:"unsupported"`
	Reason           string            `json:"reason,omitempty"`
	Required         int               `json:"required"`
	SatisfiedCount   int               `json:"satisfied_count"`
	Witness          []any             `json:"witness"`
	ExplanationCodes []ExplanationCode `json:"explanation_codes"`
	MissingCourses   []string          `json:"missing_courses"`
	Children         []*FinalizedNode  `json:"children,omitempty"`
}

// MarshalJSON renders the stable projection consumed by reporting. Empty
// lists are rendered as [] rather than null.
func (f *FinalizedNode) MarshalJSON() ([]byte, error) {
	out := finalizedJSON{
		Type:             f.Kind(),
		Satisfied:        f.Satisfied,
		Unsupported:      f.Unsupported,
		Required:         f.Required,
		SatisfiedCount:   f.SatisfiedCount,
		Witness:          make([]any, 0, len(f.Witness)),
		ExplanationCodes: f.ExplanationCodes,
		MissingCourses:   f.MissingCourses,
		Children:         f.Children,
	}
	if f.Node != nil {
		if f.Node.Kind == ast.KindCourseSet {
			out.Courses = f.Node.Courses
		}
		out.Reason = f.Node.Reason
	}
	for _, w := range f.Witness {
		out.Witness = append(out.Witness, w.Wire())
	}
	if out.ExplanationCodes == nil {
		out.ExplanationCodes = []ExplanationCode{}
	}
	if out.MissingCourses == nil {
		out.MissingCourses = []string{}
	}
	return json.Marshal(out)
}
