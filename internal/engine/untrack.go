package engine

import (
	"context"

	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Untrack stops versioning the target collection: it tears down the change
// listener and drops every auxiliary collection this engine created, but
// leaves the target collection's own documents untouched. Init on the same
// target afterward starts a fresh version history from its then-current
// contents.
func (e *Engine) Untrack(ctx context.Context) error {
	names := e.st.Names()

	err := e.withLock(ctx, true, func() error {
		meta, err := e.st.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if meta == nil {
			return vcerrors.ErrNotInitialized
		}

		e.lst.Stop()

		for _, name := range []string{
			names.Branches, names.Deltas, names.Log, names.Metadata,
			names.Modified, names.Replica, names.Stash, names.StashModified,
			names.Conflicts,
		} {
			if err := e.st.Database().Collection(name).Drop(ctx); err != nil {
				return err
			}
		}
		e.invalidateCache()
		return nil
	})
	if err != nil {
		return err
	}

	return e.st.LockRecords.RemoveRecord(ctx, names.Target)
}
