package engine

import (
	"context"
	"sort"

	"github.com/mongovc/mongovc/internal/store"
)

// Status summarizes a tracked collection's current versioning state.
type Status struct {
	CurrentN      int
	CurrentBranch string
	Detached      bool
	PendingCount  int64
	HasStash      bool
	HasConflicts  bool
}

// Status reports the collection's current version, whether it's detached,
// and whether there are pending changes, a stash, or unresolved conflicts.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	var out *Status
	err := e.withLock(ctx, false, func() error {
		if err := e.fence(ctx); err != nil {
			return err
		}
		meta, err := e.requireMetadata(ctx)
		if err != nil {
			return err
		}
		pending, err := e.st.Modified.Count(ctx)
		if err != nil {
			return err
		}
		out = &Status{
			CurrentN:      meta.CurrentN,
			CurrentBranch: meta.CurrentBranch,
			Detached:      meta.Detached,
			PendingCount:  pending,
			HasStash:      meta.HasStash,
			HasConflicts:  meta.HasConflicts,
		}
		return nil
	})
	return out, err
}

// Log returns every registered version, ordered oldest to newest; if branch
// is non-empty, only that branch's versions are returned.
func (e *Engine) Log(ctx context.Context, branch string) ([]*store.LogEntry, error) {
	var out []*store.LogEntry
	err := e.withLock(ctx, false, func() error {
		entries, err := e.st.Log.All(ctx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if branch != "" && entry.Branch != branch {
				continue
			}
			out = append(out, entry)
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].Timestamp.Before(out[j].Timestamp)
		})
		return nil
	})
	return out, err
}
