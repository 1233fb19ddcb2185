package validator

import (
	"fmt"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
)

// StructuralValidator checks the shape of a node: required lists are present
// and non-empty, children are rule nodes and forbidden fields are absent.
type StructuralValidator struct{}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Check returns the structural violations of a single node.
func (v *StructuralValidator) Check(node *ast.Node, path ast.Path) *dslErrors.ErrorList {
	errs := dslErrors.NewErrorList()
	at := path.String()

	switch node.Kind {
	case ast.KindCourseSet:
		if len(node.Courses) == 0 {
			errs.Add(&dslErrors.Error{
				Type:       dslErrors.ErrorTypeStructural,
				Path:       at,
				Field:      ast.FieldCourses,
				Constraint: dslErrors.CoursesNonEmptyConstraint,
				Message:    "COURSE_SET requires a course",
				Suggestion: `set courses to a single code, e.g. ["14:540:100"]`,
			})
		}

	case ast.KindAllOf, ast.KindNOf, ast.KindCountMin:
		v.checkChildren(node, path, errs)
		if node.Kind == ast.KindCountMin && node.Courses != nil {
			errs.Add(&dslErrors.Error{
				Type:       dslErrors.ErrorTypeStructural,
				Path:       at,
				Field:      ast.FieldCourses,
				Constraint: dslErrors.NoCoursesShortcutConstraint,
				Message:    "COUNT_MIN does not accept a courses field",
				Suggestion: "list each course as a COURSE_SET child",
			})
		}
	}

	return errs
}

func (v *StructuralValidator) checkChildren(node *ast.Node, path ast.Path, errs *dslErrors.ErrorList) {
	if len(node.Children) == 0 {
		errs.Add(&dslErrors.Error{
			Type:       dslErrors.ErrorTypeStructural,
			Path:       path.String(),
			Field:      ast.FieldChildren,
			Constraint: dslErrors.NonEmptyConstraint,
			Message:    fmt.Sprintf("%s requires at least one child", node.Kind),
		})
		return
	}

	for i, child := range node.Children {
		if child == nil {
			errs.Add(&dslErrors.Error{
				Type:       dslErrors.ErrorTypeStructural,
				Path:       path.Child(i).String(),
				Field:      ast.FieldChildren,
				Constraint: dslErrors.ChildObjectConstraint,
				Message:    "child is null",
			})
		}
	}
}
