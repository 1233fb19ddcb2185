// Package legacy maps raw JSON-like requirement rules, including pre-v2
// shorthand, into canonical ast nodes.
//
// The mapping table is closed. Shapes outside it are marked unsupported
// rather than guessed at, and the unsupported state then poisons every
// ancestor during evaluation.
//
//	node := legacy.Map(map[string]any{"any": []any{"14:540:100", "14:540:200"}})
//	// node is N_OF n=1 over two COURSE_SET leaves
//
// Migrate reports (and optionally produces) v2 rewrites of stored legacy rules.
package legacy
