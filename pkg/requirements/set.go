package requirements

import (
	"sort"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
)

// Status is the lifecycle state of a requirement set.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
	StatusRetired  Status = "RETIRED"
)

// IsValid returns true for a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusRetired:
		return true
	}
	return false
}

// Set is the requirement set of one program version.
type Set struct {
	ID             string
	Name           string
	ProgramVersion string
	Status         Status
	Nodes          []*Node

	// Source is the file the set was loaded from.
	Source string

	// Problems are validation errors found while loading. The offending
	// nodes were quarantined as unsupported.
	Problems []Problem
}

// Node is one requirement of a set.
type Node struct {
	ID    string
	Title string
	Order int

	// Rule is the canonical, quarantined rule tree.
	Rule *ast.Node

	// Raw is the rule as stored, possibly in legacy shorthand.
	Raw any
}

// Problem ties a validation error to the requirement node it was found in.
type Problem struct {
	NodeID string
	Err    *dslErrors.Error
}

// SortNodes orders nodes by Order, then by ID.
func (s *Set) SortNodes() {
	sort.SliceStable(s.Nodes, func(i, j int) bool {
		if s.Nodes[i].Order != s.Nodes[j].Order {
			return s.Nodes[i].Order < s.Nodes[j].Order
		}
		return s.Nodes[i].ID < s.Nodes[j].ID
	})
}

// Node returns the requirement node with the given ID.
func (s *Set) Node(id string) (*Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// HasUnsupported reports whether any rule in the set is unsupported.
func (s *Set) HasUnsupported() bool {
	for _, n := range s.Nodes {
		if n.Rule.HasUnsupported() {
			return true
		}
	}
	return false
}
