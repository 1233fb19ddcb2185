package engine

import "github.com/div0rce/gradpath/pkg/dsl/ast"

// Outcome is the three-way verdict of a node.
type Outcome string

const (
	OutcomeSatisfied   Outcome = "satisfied"
	OutcomeFailed      Outcome = "failed"
	OutcomeUnsupported Outcome = "unsupported"
)

// EvaluatedNode is the raw result of evaluating one node. Children are in
// the stored order of the rule node's children.
type EvaluatedNode struct {
	// Node is the rule node that was evaluated.
	Node *ast.Node

	// Satisfied is never true when Unsupported is true.
	Satisfied bool

	// Unsupported is true when the node or any descendant is unsupported.
	Unsupported bool

	// Required is the number of satisfied children needed. A leaf needs 1.
	Required int

	// SatisfiedCount is the number of satisfied children. A satisfied leaf
	// counts 1.
	SatisfiedCount int

	// Children holds one result per child, in stored order.
	Children []*EvaluatedNode

	evaluated bool
}

// Outcome returns the node's verdict.
func (e *EvaluatedNode) Outcome() Outcome {
	return outcome(e.Satisfied, e.Unsupported)
}

// FinalizedNode is an evaluated node plus its failure witness and
// explanation codes.
type FinalizedNode struct {
	Node           *ast.Node
	Satisfied      bool
	Unsupported    bool
	Required       int
	SatisfiedCount int

	// Witness is the deterministic subset of failed children shown to the
	// user: the first Required-SatisfiedCount failed children in stored
	// order. It is empty unless the node failed and is supported.
	Witness []*ast.Node

	// WitnessIndex holds the stored positions of the witness children.
	WitnessIndex []int

	// ExplanationCodes is the ordered list of reasons for the verdict.
	ExplanationCodes []ExplanationCode

	// MissingCourses is the sorted set of course codes behind the witness.
	MissingCourses []string

	Children []*FinalizedNode
}

// Outcome returns the node's verdict.
func (f *FinalizedNode) Outcome() Outcome {
	return outcome(f.Satisfied, f.Unsupported)
}

// Kind returns the kind of the underlying rule node.
func (f *FinalizedNode) Kind() ast.Kind {
	if f.Node == nil {
		return ast.KindUnsupported
	}
	if f.Node.IsUnsupported() {
		return ast.KindUnsupported
	}
	return f.Node.Kind
}

// HasUnsupported reports whether the result tree contains an unsupported
// node. Since unsupported state poisons ancestors this is the root's flag.
func (f *FinalizedNode) HasUnsupported() bool {
	return f.Unsupported
}

// Walk visits the result tree pre-order in stored child order. Returning
// false from fn skips the node's children.
func (f *FinalizedNode) Walk(fn func(node *FinalizedNode, path ast.Path) bool) {
	f.walk(nil, fn)
}

func (f *FinalizedNode) walk(path ast.Path, fn func(*FinalizedNode, ast.Path) bool) {
	if !fn(f, path) {
		return
	}
	for i, child := range f.Children {
		child.walk(path.Child(i), fn)
	}
}

func outcome(satisfied, unsupported bool) Outcome {
	switch {
	case unsupported:
		return OutcomeUnsupported
	case satisfied:
		return OutcomeSatisfied
	default:
		return OutcomeFailed
	}
}
