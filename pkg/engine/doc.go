// Package engine evaluates requirement rule trees against course evidence
// and explains the verdict.
//
// # Pipeline
//
//	rule tree + evidence
//	       ↓
//	Evaluate   satisfied / unsupported per node, children in stored order
//	       ↓
//	Finalize   post-order: failure witness and explanation codes
//	       ↓
//	FinalizedNode (JSON projection for reporting)
//
// # Verdicts
//
// Unsupported state poisons every ancestor, and an unsupported node is never
// satisfied. A cardinality node (ALL_OF, N_OF, COUNT_MIN) is satisfied when
// at least Required children are. ALL_OF requires all of them.
//
// A failed, supported node carries a witness: the first
// Required-SatisfiedCount failed children in stored order. The witness is a
// pure function of child order and child status. No search is done.
//
// Explanation codes come from a closed vocabulary:
//
//   - unsupported: exactly [UNSUPPORTED_LEGACY_RULE]
//   - satisfied: exactly [REQUIREMENT_SATISFIED]
//   - failed: REQUIREMENT_INCOMPLETE, then contextual codes such as
//     REQUIRED_COURSE_MISSING in ExplanationPriority order
//
// # Basic Usage
//
//	rule := ast.NOf(2, ast.CourseSet("14:540:100"), ast.CourseSet("14:540:200"), ast.CourseSet("14:540:300"))
//	if err := validator.Validate(rule); err != nil {
//	    return err
//	}
//	result := engine.Run(rule, engine.NewEvidenceSet("14:540:100"))
//	// result.Witness == [COURSE_SET 14:540:200]
//
// EvaluateRule is the permissive entry point for raw stored rules.
//
// # Thread Safety
//
// Evaluation never mutates the rule tree or the evidence, and each call
// builds a fresh result tree, so one validated tree can be evaluated by many
// goroutines at once.
package engine
