package engine

import "sort"

// Evidence answers whether a course code is satisfied for a plan.
// Implementations must be safe for concurrent reads.
type Evidence interface {
	Has(code string) bool
}

// EvidenceSet is a set of satisfied course codes. The zero value is an empty
// set.
type EvidenceSet map[string]struct{}

// NewEvidenceSet creates a set from the given codes.
func NewEvidenceSet(codes ...string) EvidenceSet {
	s := make(EvidenceSet, len(codes))
	for _, code := range codes {
		s[code] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set. Matching is exact.
func (s EvidenceSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Add inserts codes into the set.
func (s EvidenceSet) Add(codes ...string) {
	for _, code := range codes {
		s[code] = struct{}{}
	}
}

// Union returns a new set holding the codes of both sets.
func (s EvidenceSet) Union(other EvidenceSet) EvidenceSet {
	out := make(EvidenceSet, len(s)+len(other))
	for code := range s {
		out[code] = struct{}{}
	}
	for code := range other {
		out[code] = struct{}{}
	}
	return out
}

// Codes returns the codes in sorted order.
func (s EvidenceSet) Codes() []string {
	out := make([]string, 0, len(s))
	for code := range s {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// EvidenceFunc adapts a predicate to Evidence.
type EvidenceFunc func(code string) bool

// Has calls f(code).
func (f EvidenceFunc) Has(code string) bool {
	return f(code)
}
