package validator

import (
	"fmt"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
)

// SemanticValidator checks node parameters: count bounds and the course-code
// grammar.
type SemanticValidator struct{}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

// Check returns the semantic violations of a single node.
func (v *SemanticValidator) Check(node *ast.Node, path ast.Path) *dslErrors.ErrorList {
	errs := dslErrors.NewErrorList()

	switch node.Kind {
	case ast.KindCourseSet:
		v.checkCourses(node, path, errs)
	case ast.KindNOf:
		v.checkCount(node, path, ast.FieldN, node.N, dslErrors.NPositiveConstraint, dslErrors.NBoundConstraint, errs)
	case ast.KindCountMin:
		v.checkCount(node, path, ast.FieldMinCount, node.MinCount, dslErrors.MinCountPositiveConstraint, dslErrors.MinCountBoundConstraint, errs)
	}

	return errs
}

func (v *SemanticValidator) checkCourses(node *ast.Node, path ast.Path, errs *dslErrors.ErrorList) {
	at := path.String()

	if len(node.Courses) > 1 {
		errs.Add(&dslErrors.Error{
			Type:       dslErrors.ErrorTypeSemantic,
			Path:       at,
			Field:      ast.FieldCourses,
			Constraint: dslErrors.SingleCourseConstraint,
			Message:    fmt.Sprintf("COURSE_SET holds %d courses, expected exactly one", len(node.Courses)),
			Suggestion: "wrap one COURSE_SET per course in N_OF n=1 for alternatives",
		})
	}

	for _, code := range node.Courses {
		if ast.IsCanonicalCourseCode(code) {
			continue
		}
		e := &dslErrors.Error{
			Type:       dslErrors.ErrorTypeSemantic,
			Path:       at,
			Field:      ast.FieldCourses,
			Constraint: dslErrors.CourseCodeConstraint,
			Value:      code,
			Message:    fmt.Sprintf("malformed course code %q", code),
		}
		if canonical, ok := ast.ExtractCanonicalCourseCode(code); ok {
			e.Suggestion = fmt.Sprintf("use %q", canonical)
		}
		errs.Add(e)
	}
}

func (v *SemanticValidator) checkCount(node *ast.Node, path ast.Path, field string, value int, positive, bound string, errs *dslErrors.ErrorList) {
	at := path.String()

	if value < 1 {
		errs.Add(&dslErrors.Error{
			Type:       dslErrors.ErrorTypeSemantic,
			Path:       at,
			Field:      field,
			Constraint: positive,
			Message:    fmt.Sprintf("%s must be an integer >= 1", field),
		})
		return
	}

	// An empty children list is already a structural error.
	if len(node.Children) > 0 && value > len(node.Children) {
		errs.Add(&dslErrors.Error{
			Type:       dslErrors.ErrorTypeSemantic,
			Path:       at,
			Field:      field,
			Constraint: bound,
			Value:      fmt.Sprint(value),
			Message:    fmt.Sprintf("%s is %d but the node has %d children", field, value, len(node.Children)),
			Suggestion: dslErrors.SuggestBound(field, len(node.Children)),
		})
	}
}
