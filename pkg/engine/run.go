package engine

import (
	"github.com/div0rce/gradpath/pkg/dsl/ast"
	"github.com/div0rce/gradpath/pkg/dsl/legacy"
	"github.com/div0rce/gradpath/pkg/dsl/validator"
)

// Run evaluates and finalizes node against evidence.
func Run(node *ast.Node, evidence Evidence) *FinalizedNode {
	return Finalize(Evaluate(node, evidence))
}

// Run evaluates and finalizes node against evidence with this evaluator.
func (e *Evaluator) Run(node *ast.Node, evidence Evidence) *FinalizedNode {
	return Finalize(e.Evaluate(node, evidence))
}

// EvaluateRule evaluates a raw, possibly legacy, rule. It never fails:
// unmappable shapes and nodes that do not validate are evaluated as
// unsupported.
func EvaluateRule(raw any, evidence Evidence) *FinalizedNode {
	node, _ := validator.New().Quarantine(legacy.Map(raw))
	return Run(node, evidence)
}
