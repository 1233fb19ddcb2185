package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/div0rce/gradpath/pkg/audit"
)

const backendMemory = "memory"

var errClosed = errors.New("storage is closed")

// MemoryStorage implements audit.Storage with an in-memory map. Audits are
// lost on exit; it backs tests and one-off CLI runs.
type MemoryStorage struct {
	audits map[string]*audit.Audit
	closed bool
	mu     sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		audits: make(map[string]*audit.Audit),
	}
}

// Store keeps a copy of the audit.
func (s *MemoryStorage) Store(ctx context.Context, a *audit.Audit) error {
	if err := ctx.Err(); err != nil {
		return audit.NewStorageError(backendMemory, "store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return audit.NewStorageError(backendMemory, "store", errClosed)
	}

	s.audits[a.ID] = copyAudit(a)
	return nil
}

// Get returns a copy of the audit with the given ID.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*audit.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, audit.NewStorageError(backendMemory, "get", errClosed)
	}

	a, ok := s.audits[id]
	if !ok {
		return nil, audit.ErrNotFound
	}
	return copyAudit(a), nil
}

// Latest returns the newest audit of a plan.
func (s *MemoryStorage) Latest(ctx context.Context, planID string) (*audit.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, audit.NewStorageError(backendMemory, "latest", errClosed)
	}

	matches := s.filter(&audit.Query{PlanID: planID})
	if len(matches) == 0 {
		return nil, audit.ErrNotFound
	}
	return copyAudit(matches[0]), nil
}

// List returns audits matching the query, newest first.
func (s *MemoryStorage) List(ctx context.Context, query *audit.Query) ([]*audit.Audit, error) {
	if query == nil {
		query = &audit.Query{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, audit.NewStorageError(backendMemory, "list", errClosed)
	}

	matches := s.filter(query)
	if query.Offset >= len(matches) {
		return []*audit.Audit{}, nil
	}
	end := query.Offset + query.EffectiveLimit()
	if end > len(matches) {
		end = len(matches)
	}

	results := make([]*audit.Audit, 0, end-query.Offset)
	for _, a := range matches[query.Offset:end] {
		results = append(results, copyAudit(a))
	}
	return results, nil
}

// Count returns the number of audits matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if query == nil {
		query = &audit.Query{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, audit.NewStorageError(backendMemory, "count", errClosed)
	}
	return int64(len(s.filter(query))), nil
}

// DeleteBefore removes audits computed before cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, audit.NewStorageError(backendMemory, "delete", errClosed)
	}

	var count int64
	for id, a := range s.audits {
		if a.ComputedAt.Before(cutoff) {
			delete(s.audits, id)
			count++
		}
	}
	return count, nil
}

// DeleteOldest removes all but the newest keep audits.
func (s *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		return 0, audit.NewStorageError(backendMemory, "delete_oldest", fmt.Errorf("keep must be >= 0, got %d", keep))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, audit.NewStorageError(backendMemory, "delete_oldest", errClosed)
	}

	all := s.filter(&audit.Query{})
	if int64(len(all)) <= keep {
		return 0, nil
	}
	var count int64
	for _, a := range all[keep:] {
		delete(s.audits, a.ID)
		count++
	}
	return count, nil
}

// Close drops all audits. Further calls fail.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.audits = nil
	return nil
}

// filter returns matching audits, newest first, ignoring pagination.
// Callers hold the lock.
func (s *MemoryStorage) filter(query *audit.Query) []*audit.Audit {
	var out []*audit.Audit
	for _, a := range s.audits {
		if matches(a, query) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ComputedAt.Equal(out[j].ComputedAt) {
			return out[i].ComputedAt.After(out[j].ComputedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func matches(a *audit.Audit, query *audit.Query) bool {
	if query.PlanID != "" && a.PlanID != query.PlanID {
		return false
	}
	if query.RequirementSetID != "" && a.RequirementSetID != query.RequirementSetID {
		return false
	}
	if query.Since != nil && a.ComputedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && !a.ComputedAt.Before(*query.Until) {
		return false
	}
	return true
}

// copyAudit copies the audit and its slices so stored audits cannot be
// mutated through returned pointers.
func copyAudit(a *audit.Audit) *audit.Audit {
	c := *a
	c.Requirements = make([]audit.RequirementResult, len(a.Requirements))
	for i, r := range a.Requirements {
		if r.Detail != nil {
			d := *r.Detail
			d.MissingCourses = append([]string(nil), r.Detail.MissingCourses...)
			d.Explanations = append(d.Explanations[:0:0], r.Detail.Explanations...)
			r.Detail = &d
		}
		c.Requirements[i] = r
	}
	if a.Readiness != nil {
		rc := *a.Readiness
		rc.Blockers = append([]audit.Blocker{}, a.Readiness.Blockers...)
		c.Readiness = &rc
	}
	return &c
}
