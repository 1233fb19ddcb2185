package engine

import (
	"sort"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
)

// Finalize computes the witness and explanation codes of every node,
// children before parents. The input is not modified.
//
// Finalize panics if evaluated is nil or was not produced by an Evaluator:
// finalizing an unevaluated node is a programming error.
func Finalize(evaluated *EvaluatedNode) *FinalizedNode {
	if evaluated == nil {
		panic("engine: Finalize called with a nil result")
	}
	if !evaluated.evaluated {
		panic("engine: Finalize called on a node that was never evaluated")
	}

	f := &FinalizedNode{
		Node:           evaluated.Node,
		Satisfied:      evaluated.Satisfied,
		Unsupported:    evaluated.Unsupported,
		Required:       evaluated.Required,
		SatisfiedCount: evaluated.SatisfiedCount,
	}

	if len(evaluated.Children) > 0 {
		f.Children = make([]*FinalizedNode, len(evaluated.Children))
		for i, child := range evaluated.Children {
			f.Children[i] = Finalize(child)
		}
	}

	if !f.Satisfied && !f.Unsupported {
		f.WitnessIndex = witness(f)
		if len(f.WitnessIndex) > 0 {
			f.Witness = make([]*ast.Node, len(f.WitnessIndex))
			for n, i := range f.WitnessIndex {
				f.Witness[n] = f.Children[i].Node
			}
		}
		f.MissingCourses = missingCourses(f)
	}

	f.ExplanationCodes = explain(f)
	return f
}

// witness selects the first required-satisfied failed children in stored
// order. It depends only on child order and each child's satisfied flag.
func witness(f *FinalizedNode) []int {
	shortfall := f.Required - f.SatisfiedCount
	if shortfall <= 0 {
		return nil
	}
	out := make([]int, 0, shortfall)
	for i, child := range f.Children {
		if len(out) == shortfall {
			break
		}
		if !child.Satisfied {
			out = append(out, i)
		}
	}
	return out
}

// missingCourses returns the sorted course codes behind a failed node: the
// leaf's own code, or the union over the witness.
func missingCourses(f *FinalizedNode) []string {
	if len(f.Children) == 0 {
		if code := f.Node.Course(); code != "" {
			return []string{code}
		}
		return nil
	}

	set := make(map[string]struct{})
	for _, i := range f.WitnessIndex {
		for _, code := range f.Children[i].MissingCourses {
			set[code] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
