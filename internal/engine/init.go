package engine

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Init tracks the collection: it creates the root version (0, "main"),
// snapshots the collection's current contents into the replica, and starts
// the change listener. Init on an already-tracked collection fails with
// ErrAlreadyInitialized; use Register for everything after the first call.
func (e *Engine) Init(ctx context.Context, message string) error {
	return e.withLock(ctx, true, func() error {
		meta, err := e.st.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if meta != nil {
			return vcerrors.ErrAlreadyInitialized
		}

		rootID := xid.New().String()
		entry := &store.LogEntry{
			ID:        rootID,
			N:         0,
			Branch:    "main",
			Timestamp: time.Now(),
			Message:   message,
		}
		if err := e.st.Log.Insert(ctx, entry); err != nil {
			return err
		}
		if err := e.st.Branches.Upsert(ctx, &store.BranchRecord{Name: "main", TipN: 0, TipBranch: "main"}); err != nil {
			return err
		}
		if err := e.st.Replica.ReplaceAllFrom(ctx, e.st.Target); err != nil {
			return err
		}
		if err := e.st.Metadata.Set(ctx, &store.Metadata{CurrentN: 0, CurrentBranch: "main"}); err != nil {
			return err
		}

		e.Start()
		e.invalidateCache()
		return nil
	})
}
