package sync

import (
	"context"
	"fmt"

	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/pkg/pq"
)

// logEntryByTime orders log entries for replication the way pq.Value
// requires: Pop returns the item that is Less than every other, and the
// oldest entry is the one that must replicate first (a parent always
// predates the child whose prev_id points at it), so an entry counts as
// Less than another exactly when it is older.
type logEntryByTime struct{ e *store.LogEntry }

func (l logEntryByTime) Less(other pq.Value) bool {
	return l.e.Timestamp.Before(other.(logEntryByTime).e.Timestamp)
}

// fetchAll copies every log entry and delta record src has that dst
// doesn't: the bulk "sync the whole history" step both push and pull start
// from before computing a fast-forward or a three-way merge. It never
// removes or rewrites anything already present in dst, so running it twice,
// or running it against an already-ahead dst, is always a no-op.
//
// This runs outside any transaction: dst and src are almost always two
// different *mongo.Client connections to two different deployments, and a
// session-scoped transaction cannot span two clients. Its per-record
// existence check before each insert is what keeps a partial run safe to
// resume instead of transactional atomicity.
func fetchAll(ctx context.Context, dst, src *store.Store) error {
	entries, err := src.Log.All(ctx)
	if err != nil {
		return fmt.Errorf("fetch log entries: %w", err)
	}

	ordered := pq.NewPriorityQueue()
	for _, e := range entries {
		ordered.Push(logEntryByTime{e})
	}
	for ordered.Len() > 0 {
		e := ordered.Pop().(logEntryByTime).e
		existing, err := dst.Log.Get(ctx, e.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := dst.Log.Insert(ctx, e); err != nil {
				return err
			}
		}
	}

	deltas, err := src.Deltas.All(ctx)
	if err != nil {
		return fmt.Errorf("fetch delta records: %w", err)
	}
	for _, d := range deltas {
		existing, err := dst.Deltas.Get(ctx, d.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := dst.Deltas.Insert(ctx, d); err != nil {
				return err
			}
		}
	}

	return nil
}
