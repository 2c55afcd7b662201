package sync

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Resolution supplies the final value for one document a prior Pull left
// conflicted. Merged is written verbatim to the target and replica
// collections; the change listener picks it up as an ordinary modification
// for the next Register to commit, so resolving a conflict carries no
// delta bookkeeping of its own.
type Resolution struct {
	DocumentID string
	Merged     codec.Value
}

// ResolveConflicts applies the caller's chosen resolutions, clearing each
// document's conflict record as it goes, and clears the metadata
// has_conflicts flag once none remain.
func (s *Syncer) ResolveConflicts(ctx context.Context, resolutions []Resolution) error {
	return s.local.WithLock(ctx, true, func() error {
		st := s.local.Store()

		meta, err := st.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if meta == nil {
			return vcerrors.ErrNotInitialized
		}

		for _, r := range resolutions {
			conflict, err := st.Conflicts.Get(ctx, r.DocumentID)
			if err != nil {
				return err
			}
			if conflict == nil {
				continue
			}

			idVal, err := codec.DocumentKeyToValue(r.DocumentID)
			if err != nil {
				return err
			}
			rawID := idVal.ToBSON()

			if err := materialize(ctx, st, rawID, r.Merged); err != nil {
				return fmt.Errorf("resolve conflict for %s: %w", r.DocumentID, err)
			}
			if err := st.Conflicts.Delete(ctx, r.DocumentID); err != nil {
				return err
			}
		}

		remaining, err := st.Conflicts.Count(ctx)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := st.Metadata.Update(ctx, bson.M{"has_conflicts": false}); err != nil {
				return err
			}
		}

		s.local.InvalidateCache()
		return nil
	})
}
