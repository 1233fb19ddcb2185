package validator

import (
	"github.com/div0rce/gradpath/pkg/dsl/ast"
	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
)

// Option configures a Validator.
type Option func(*Validator)

// WithRejectUnsupported makes unsupported nodes validation errors instead of
// representable terminal states. Lint uses this in strict mode.
func WithRejectUnsupported() Option {
	return func(v *Validator) {
		v.rejectUnsupported = true
	}
}

// Validator checks a rule tree once, at load time, before any evaluation.
// Each node is checked for shape (structural) and then for bounds and grammar
// (semantic). A failing node never stops its siblings or descendants from
// being checked.
type Validator struct {
	structural        *StructuralValidator
	semantic          *SemanticValidator
	rejectUnsupported bool
}

// New creates a validator with both passes.
func New(opts ...Option) *Validator {
	v := &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks a tree with the default validator.
func Validate(root *ast.Node) error {
	return New().Validate(root)
}

// Validate checks every node of the tree in pre-order, stored child order,
// and returns all violations as an *errors.ErrorList, or nil.
func (v *Validator) Validate(root *ast.Node) error {
	errs := dslErrors.NewErrorList()

	if root == nil {
		errs.AddError(dslErrors.ErrorTypeStructural, ast.Path(nil).String(), "", dslErrors.ChildObjectConstraint, "rule is empty")
		return errs.ToError()
	}

	_ = ast.Walk(root, func(node *ast.Node, path ast.Path) error {
		errs.AddAll(v.checkNode(node, path))
		return nil
	})

	return errs.ToError()
}

// Quarantine returns a copy of the tree in which every node that fails its
// own checks is replaced by an UNSUPPORTED marker carrying the node's wire
// shape and the first violation as reason. The input tree is not modified.
// The violations found are returned alongside, in the same order Validate
// reports them.
//
// Quarantine is the permissive alternative to rejecting a tree: the bad node
// then poisons its ancestors during evaluation instead of failing the load.
func (v *Validator) Quarantine(root *ast.Node) (*ast.Node, *dslErrors.ErrorList) {
	errs := dslErrors.NewErrorList()
	if root == nil {
		errs.AddError(dslErrors.ErrorTypeStructural, ast.Path(nil).String(), "", dslErrors.ChildObjectConstraint, "rule is empty")
		return ast.Unsupported(nil, "rule is empty"), errs
	}
	return v.quarantine(root, nil, errs), errs
}

func (v *Validator) quarantine(node *ast.Node, path ast.Path, errs *dslErrors.ErrorList) *ast.Node {
	own := v.checkNode(node, path)
	if own.HasErrors() {
		errs.AddAll(own)
		// Nested violations are still reported so one pass shows everything.
		for i, child := range node.Children {
			if child != nil {
				_ = ast.Walk(child, func(n *ast.Node, p ast.Path) error {
					errs.AddAll(v.checkNode(n, append(path.Child(i), p...)))
					return nil
				})
			}
		}
		return ast.Unsupported(node.Wire(), own.Errors[0].Message)
	}

	out := *node
	out.Courses = append([]string(nil), node.Courses...)
	if node.Courses != nil && out.Courses == nil {
		out.Courses = []string{}
	}
	if node.Children != nil {
		out.Children = make([]*ast.Node, len(node.Children))
		for i, child := range node.Children {
			out.Children[i] = v.quarantine(child, path.Child(i), errs)
		}
	}
	return &out
}

// checkNode runs both passes on a single node. Children are not visited.
func (v *Validator) checkNode(node *ast.Node, path ast.Path) *dslErrors.ErrorList {
	errs := dslErrors.NewErrorList()

	if node.IsUnsupported() {
		if v.rejectUnsupported {
			errs.Add(&dslErrors.Error{
				Type:       dslErrors.ErrorTypeStructural,
				Path:       path.String(),
				Field:      ast.FieldType,
				Constraint: "supported rule shape",
				Message:    "unsupported rule: " + node.Reason,
				Suggestion: "rewrite the rule as COURSE_SET, ALL_OF, N_OF or COUNT_MIN",
			})
		}
		return errs
	}

	errs.AddAll(v.structural.Check(node, path))
	errs.AddAll(v.semantic.Check(node, path))
	return errs
}
