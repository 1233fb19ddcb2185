// Package validator checks requirement rule trees before evaluation.
//
// Two checks run on every node:
//
//  1. Structural: required lists are present and non-empty, children are
//     rule nodes, COUNT_MIN carries no courses shortcut.
//  2. Semantic: n and min_count are integers >= 1 and do not exceed the
//     number of children, and every course code matches the canonical
//     grammar (e.g. "14:540:100"). A COURSE_SET holds exactly one course.
//
// All violations in the tree are collected in one pass, in pre-order stored
// order, and returned as an *errors.ErrorList.
//
// Unsupported nodes are not errors; they pass validation and poison their
// ancestors during evaluation. WithRejectUnsupported turns them into errors.
//
// Quarantine is the permissive mode: instead of rejecting the tree it replaces
// each invalid node with an UNSUPPORTED marker.
package validator
