package engine

import "sort"

// ExplanationCode is a closed vocabulary of reasons attached to a finalized
// node.
type ExplanationCode string

const (
	CodeUnsupportedLegacyRule ExplanationCode = "UNSUPPORTED_LEGACY_RULE"
	CodeRequiredCourseMissing ExplanationCode = "REQUIRED_COURSE_MISSING"
	CodeRequirementIncomplete ExplanationCode = "REQUIREMENT_INCOMPLETE"
	CodeRequirementSatisfied  ExplanationCode = "REQUIREMENT_SATISFIED"
)

// ExplanationPriority ranks the contextual codes that follow
// REQUIREMENT_INCOMPLETE on a failed node. Lower values sort first. The
// outcome codes (UNSUPPORTED_LEGACY_RULE, REQUIREMENT_SATISFIED and
// REQUIREMENT_INCOMPLETE) are placed by explain, never by this table.
var ExplanationPriority = map[ExplanationCode]int{
	CodeRequiredCourseMissing: 1,
}

// priority returns the rank of a code. Codes outside the table sort last.
func priority(code ExplanationCode) int {
	if p, ok := ExplanationPriority[code]; ok {
		return p
	}
	return len(ExplanationPriority) + 1
}

// SortCodes orders codes by priority, then by name, and drops duplicates.
func SortCodes(codes []ExplanationCode) []ExplanationCode {
	seen := make(map[ExplanationCode]bool, len(codes))
	out := make([]ExplanationCode, 0, len(codes))
	for _, code := range codes {
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priority(out[i]), priority(out[j])
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

// explain assigns the explanation codes of a finalized node whose witness
// and children are already set.
//
// Unsupported and satisfied nodes get exactly one code. A failed node leads
// with REQUIREMENT_INCOMPLETE, followed by its contextual codes in priority
// order: a failed leaf contributes REQUIRED_COURSE_MISSING, a failed
// cardinality node inherits the contextual codes of its witness.
func explain(f *FinalizedNode) []ExplanationCode {
	switch {
	case f.Unsupported:
		return []ExplanationCode{CodeUnsupportedLegacyRule}
	case f.Satisfied:
		return []ExplanationCode{CodeRequirementSatisfied}
	}

	var contextual []ExplanationCode
	if len(f.Children) == 0 {
		contextual = append(contextual, CodeRequiredCourseMissing)
	}
	for _, i := range f.WitnessIndex {
		contextual = append(contextual, contextualCodes(f.Children[i])...)
	}

	return append([]ExplanationCode{CodeRequirementIncomplete}, SortCodes(contextual)...)
}

func contextualCodes(f *FinalizedNode) []ExplanationCode {
	out := make([]ExplanationCode, 0, len(f.ExplanationCodes))
	for _, code := range f.ExplanationCodes {
		switch code {
		case CodeRequirementIncomplete, CodeRequirementSatisfied, CodeUnsupportedLegacyRule:
			continue
		}
		out = append(out, code)
	}
	return out
}
