package requirements

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe in-memory store of requirement sets, loaded from
// one directory. Reload swaps the contents atomically.
type Registry struct {
	mu       sync.RWMutex
	sets     map[string]*Set
	version  string
	loadTime time.Time

	dir      string
	loader   *Loader
	logger   *slog.Logger
	observer ReloadObserver
}

// ReloadObserver is notified after every Reload attempt.
type ReloadObserver interface {
	RecordReload(success bool, sets, problems int)
}

// SetObserver installs an observer for reloads. Pass nil to remove it.
func (r *Registry) SetObserver(o ReloadObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// NewRegistry creates an empty registry backed by dir.
func NewRegistry(dir string, loader *Loader, logger *slog.Logger) *Registry {
	if loader == nil {
		loader = NewLoader(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sets:   make(map[string]*Set),
		dir:    dir,
		loader: loader,
		logger: logger.With("component", "requirements.registry"),
	}
}

// Reload loads every set from the directory and replaces the registry
// contents. On any load error the previous contents are kept.
func (r *Registry) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sets, err := r.loader.LoadDir(r.dir)
	if err != nil {
		r.observe(false, 0, 0)
		return fmt.Errorf("reload %s: %w", r.dir, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Replace(sets); err != nil {
		r.observe(false, 0, 0)
		return err
	}

	problems := 0
	for _, set := range sets {
		problems += len(set.Problems)
	}
	r.observe(true, len(sets), problems)

	r.logger.Info("Requirement sets reloaded", "dir", r.dir, "count", len(sets), "version", r.Version())
	return nil
}

// Replace atomically replaces all sets. Set IDs must be unique.
func (r *Registry) Replace(sets []*Set) error {
	next := make(map[string]*Set, len(sets))
	for _, set := range sets {
		if set == nil || set.ID == "" {
			return &RegistryError{Operation: "replace", Message: "set must have an id"}
		}
		if prev, ok := next[set.ID]; ok {
			return &RegistryError{
				SetID:     set.ID,
				Operation: "replace",
				Message:   fmt.Sprintf("defined in both %s and %s", prev.Source, set.Source),
			}
		}
		next[set.ID] = set
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sets = next
	r.loadTime = time.Now()
	r.updateVersion()
	return nil
}

// Get returns the set with the given ID.
func (r *Registry) Get(id string) (*Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, id)
	}
	return set, nil
}

// List returns all sets sorted by ID.
func (r *Registry) List() []*Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Set, 0, len(r.sets))
	for _, set := range r.sets {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of sets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}

// Version returns a hash of the loaded set IDs and sources. It changes on
// every Replace that changes the contents.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the contents were last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

func (r *Registry) observe(success bool, sets, problems int) {
	r.mu.RLock()
	o := r.observer
	r.mu.RUnlock()
	if o != nil {
		o.RecordReload(success, sets, problems)
	}
}

// updateVersion must be called with the write lock held.
func (r *Registry) updateVersion() {
	ids := make([]string, 0, len(r.sets))
	for id := range r.sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		set := r.sets[id]
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\n", id, set.ProgramVersion, set.Status, len(set.Nodes))
		for _, n := range set.Nodes {
			fmt.Fprintf(h, "%s\x00%v\n", n.ID, n.Raw)
		}
	}
	r.version = hex.EncodeToString(h.Sum(nil))[:16]
}
