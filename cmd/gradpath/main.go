// Gradpath audits student degree plans against versioned requirement sets.
//
// Requirement rules are trees of course leaves and cardinality nodes
// (ALL_OF, N_OF, COUNT_MIN). Legacy shorthand rules are still read, and
// shapes the engine cannot interpret are kept as UNSUPPORTED so an audit
// reports them instead of guessing.
//
// Usage:
//
//	# Evaluate one rule against completed courses
//	gradpath evaluate --rule rule.yaml --evidence "01:198:111,01:198:112"
//
//	# Validate requirement-set files
//	gradpath lint --dir requirements/
//
//	# Convert legacy shorthand rules to the v2 shape
//	gradpath migrate --dir requirements/ --apply
//
//	# Audit a plan and store the result
//	gradpath audit --plan plan.yaml --store
//
//	# Inspect stored audits
//	gradpath audits list --plan plan-1
//
//	# Re-audit a plan whenever requirement files change
//	gradpath watch --plan plan.yaml
package main

func main() {
	Execute()
}
