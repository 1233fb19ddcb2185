package audit

import (
	"sort"
	"time"
)

// BlockerCode names a reason a plan is not ready for graduation review.
type BlockerCode string

const (
	BlockerInvalidItems        BlockerCode = "INVALID_ITEMS"
	BlockerUnsupportedRules    BlockerCode = "UNSUPPORTED_RULES"
	BlockerMissingRequirements BlockerCode = "MISSING_REQUIREMENTS"
	BlockerUnknownRequirements BlockerCode = "UNKNOWN_REQUIREMENTS"
)

var blockerOrder = map[BlockerCode]int{
	BlockerInvalidItems:        0,
	BlockerUnsupportedRules:    1,
	BlockerMissingRequirements: 2,
	BlockerUnknownRequirements: 3,
}

// Blocker is one reason a plan is not ready. UNSUPPORTED_RULES carries no
// count.
type Blocker struct {
	Code  BlockerCode `json:"code"`
	Count int         `json:"count,omitempty"`
}

// ReadyCheck is the readiness verdict of an audit.
type ReadyCheck struct {
	OK        bool      `json:"ok"`
	Blockers  []Blocker `json:"blockers"`
	AuditID   string    `json:"audit_id"`
	CheckedAt time.Time `json:"checked_at"`
}

// Readiness derives the readiness verdict from an audit and the number of
// INVALID plan items. Blockers come in a fixed order; the check is OK when
// there are none.
func Readiness(a *Audit, invalidItems int) ReadyCheck {
	blockers := []Blocker{}

	if invalidItems > 0 {
		blockers = append(blockers, Blocker{Code: BlockerInvalidItems, Count: invalidItems})
	}
	if a.HasUnsupportedRules {
		blockers = append(blockers, Blocker{Code: BlockerUnsupportedRules})
	}
	if a.Summary.Missing > 0 {
		blockers = append(blockers, Blocker{Code: BlockerMissingRequirements, Count: a.Summary.Missing})
	}
	if a.Summary.Unknown > 0 {
		blockers = append(blockers, Blocker{Code: BlockerUnknownRequirements, Count: a.Summary.Unknown})
	}

	sort.SliceStable(blockers, func(i, j int) bool {
		return blockerOrder[blockers[i].Code] < blockerOrder[blockers[j].Code]
	})

	return ReadyCheck{
		OK:        len(blockers) == 0,
		Blockers:  blockers,
		AuditID:   a.ID,
		CheckedAt: a.ComputedAt,
	}
}
