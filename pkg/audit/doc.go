// Package audit runs degree audits: it evaluates every requirement node of
// a requirement set against a student's plan and derives a readiness
// verdict.
//
// # Statuses
//
// Each node is evaluated twice at most. Against completed courses it is
// SATISFIED, or UNKNOWN when its rule is unsupported. Otherwise it is
// evaluated again with in-progress courses added: PENDING when that
// satisfies it, MISSING when it does not. Only VALID plan items with a
// canonical course code count as evidence.
//
// # Readiness
//
// Readiness lists blockers in a fixed order: INVALID_ITEMS,
// UNSUPPORTED_RULES, MISSING_REQUIREMENTS, UNKNOWN_REQUIREMENTS. A plan is
// ready when there are none. Pending requirements do not block.
//
// # Usage
//
//	auditor := audit.NewAuditor(
//	    audit.WithStorage(store),
//	    audit.WithRecorder(collector),
//	)
//	result, err := auditor.Run(ctx, plan, set)
//
// Storage backends live in the storage subpackage; retention prunes them.
package audit
