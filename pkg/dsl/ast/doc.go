// Package ast provides the node model for the gradpath degree-requirement DSL.
//
// A requirement rule is a tree of Nodes. Every node carries a Kind tag and the
// parameters that kind needs; the set of kinds is closed:
//
//	COURSE_SET  leaf, matches a single canonical course code
//	ALL_OF      satisfied when every child is satisfied
//	N_OF        satisfied when at least N children are satisfied
//	COUNT_MIN   alias of N_OF with its own tag (parameter min_count)
//	UNSUPPORTED terminal marker for shapes the engine declines to interpret
//
// Trees are built once (by the legacy mapper or the constructors in this
// package) and never mutated afterwards. Evaluation results live in separate
// trees owned by package engine.
//
// # Basic Usage
//
//	rule := ast.NOf(2,
//	    ast.CourseSet("14:540:100"),
//	    ast.CourseSet("14:540:200"),
//	    ast.CourseSet("14:540:300"),
//	)
//	fmt.Println(rule.Kind, rule.Required())
//
// # Wire Shape
//
// Wire returns the canonical v2 JSON-like projection of a node:
//
//	{"type": "N_OF", "n": 2, "children": [{"type": "COURSE_SET", "courses": ["14:540:100"]}, ...]}
//
// # Course Codes
//
// Course codes follow the canonical grammar SS:DDD:NNN (two-digit subject
// group, three-digit department, three-digit course number), e.g. 14:540:100.
package ast
