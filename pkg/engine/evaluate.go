package engine

import (
	"sync"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
)

// Evaluator evaluates rule trees against evidence. It holds no per-call
// state, so one Evaluator can serve concurrent calls.
type Evaluator struct {
	// parallelMin is the child count at which children are evaluated
	// concurrently. Zero disables parallel evaluation.
	parallelMin int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithParallel evaluates the children of any node with at least minChildren
// children in separate goroutines. Results are placed in stored order before
// finalization, so the output is identical to sequential evaluation.
func WithParallel(minChildren int) Option {
	return func(e *Evaluator) {
		if minChildren < 2 {
			minChildren = 2
		}
		e.parallelMin = minChildren
	}
}

// NewEvaluator creates an evaluator. Evaluation is sequential by default.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = NewEvaluator()

// Evaluate evaluates node against evidence sequentially.
func Evaluate(node *ast.Node, evidence Evidence) *EvaluatedNode {
	return defaultEvaluator.Evaluate(node, evidence)
}

// Evaluate maps (node, evidence) to a fresh result tree. Neither input is
// modified. Every child is evaluated; there is no short-circuit.
//
// A nil node, an unknown kind, a COURSE_SET that does not hold exactly one
// course and a cardinality node with no children or a count outside
// 1..len(children) evaluate as unsupported. A nil evidence, including a nil
// EvidenceFunc, is treated as empty.
func (e *Evaluator) Evaluate(node *ast.Node, evidence Evidence) *EvaluatedNode {
	if f, ok := evidence.(EvidenceFunc); evidence == nil || (ok && f == nil) {
		evidence = EvidenceSet(nil)
	}
	return e.evaluate(node, evidence)
}

func (e *Evaluator) evaluate(node *ast.Node, evidence Evidence) *EvaluatedNode {
	if node == nil {
		node = ast.Unsupported(nil, "rule node is null")
	}

	result := &EvaluatedNode{Node: node, evaluated: true}

	switch node.Kind {
	case ast.KindCourseSet:
		code := node.Course()
		if code == "" {
			result.Unsupported = true
			return result
		}
		result.Required = 1
		if evidence.Has(code) {
			result.SatisfiedCount = 1
			result.Satisfied = true
		}
		return result

	case ast.KindAllOf, ast.KindNOf, ast.KindCountMin:
		result.Required = node.Required()
		result.Children = e.evaluateChildren(node.Children, evidence)
		for _, child := range result.Children {
			if child.Unsupported {
				result.Unsupported = true
			}
			if child.Satisfied {
				result.SatisfiedCount++
			}
		}
		if len(node.Children) == 0 || result.Required < 1 || result.Required > len(node.Children) {
			result.Unsupported = true
		}
		result.Satisfied = !result.Unsupported && result.SatisfiedCount >= result.Required
		return result

	default:
		result.Unsupported = true
		return result
	}
}

// evaluateChildren returns one result per child in stored order. In parallel
// mode each goroutine writes only its own slot.
func (e *Evaluator) evaluateChildren(children []*ast.Node, evidence Evidence) []*EvaluatedNode {
	results := make([]*EvaluatedNode, len(children))

	if e.parallelMin == 0 || len(children) < e.parallelMin {
		for i, child := range children {
			results[i] = e.evaluate(child, evidence)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child *ast.Node) {
			defer wg.Done()
			results[i] = e.evaluate(child, evidence)
		}(i, child)
	}
	wg.Wait()

	return results
}
