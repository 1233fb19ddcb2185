package audit

import (
	"context"
	"fmt"
	"io"
	"time"
)

const (
	// DefaultLimit is used when a query sets no limit.
	DefaultLimit = 100

	// MaxLimit caps the number of audits returned by one query.
	MaxLimit = 10000
)

// Query filters stored audits. Results are ordered newest first.
type Query struct {
	PlanID           string     `json:"plan_id,omitempty"`
	RequirementSetID string     `json:"requirement_set_id,omitempty"`
	Since            *time.Time `json:"since,omitempty"` // inclusive
	Until            *time.Time `json:"until,omitempty"` // exclusive

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Validate checks the query parameters.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.Since != nil && q.Until != nil && q.Since.After(*q.Until) {
		return NewQueryError(q, fmt.Errorf("since (%v) is after until (%v)", *q.Since, *q.Until))
	}
	return nil
}

// EffectiveLimit returns the limit to apply, substituting DefaultLimit for 0.
func (q *Query) EffectiveLimit() int {
	if q == nil || q.Limit == 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Storage persists audits. Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists an audit. Storing an existing ID replaces it.
	Store(ctx context.Context, a *Audit) error

	// Get returns the audit with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Audit, error)

	// Latest returns the newest audit of a plan, or ErrNotFound.
	Latest(ctx context.Context, planID string) (*Audit, error)

	// List returns audits matching the query, newest first.
	List(ctx context.Context, query *Query) ([]*Audit, error)

	// Count returns the number of audits matching the query filters.
	// Limit and Offset are ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes audits computed before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes all but the newest keep audits.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes audits to w in some format.
type Exporter interface {
	Export(ctx context.Context, audits []*Audit, w io.Writer) error
}
