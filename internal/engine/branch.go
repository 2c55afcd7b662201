package engine

import (
	"context"

	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// CreateBranch names a new branch at the currently checked-out version
// without registering anything. Its first register call picks up from
// there: TipN is left at -1 so Register knows no log entry exists for it
// yet and forks from the current version instead of continuing a tip.
func (e *Engine) CreateBranch(ctx context.Context, name string) error {
	return e.withLock(ctx, true, func() error {
		if _, err := e.requireMetadata(ctx); err != nil {
			return err
		}
		existing, err := e.st.Branches.Get(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return vcerrors.ErrBranchExists
		}
		return e.st.Branches.Upsert(ctx, &store.BranchRecord{Name: name, TipN: -1, TipBranch: name})
	})
}

// Branches returns every branch record, the tip each currently points at.
func (e *Engine) Branches(ctx context.Context) ([]*store.BranchRecord, error) {
	var out []*store.BranchRecord
	err := e.withLock(ctx, false, func() error {
		recs, err := e.st.Branches.All(ctx)
		if err != nil {
			return err
		}
		out = recs
		return nil
	})
	return out, err
}

// DeleteVersionSubtree removes (n, branch) and every version descending
// from it, along with their delta records, detaching them from the log
// tree. It fails with ErrInvalidVersion, removing nothing, if the version is
// the root or if the checked-out version is that version or one of its
// descendants; it does not move the checkout out of the subtree first.
func (e *Engine) DeleteVersionSubtree(ctx context.Context, n int, branch string) error {
	return e.withLock(ctx, true, func() error {
		meta, err := e.requireMetadata(ctx)
		if err != nil {
			return err
		}

		tree, err := e.logTree(ctx)
		if err != nil {
			return err
		}
		targetID, ok := tree.Lookup(logtree.Version{N: n, Branch: branch})
		if !ok {
			return vcerrors.ErrInvalidVersion
		}
		if targetID == tree.RootID() {
			return vcerrors.ErrInvalidVersion
		}

		curID, ok := tree.Lookup(logtree.Version{N: meta.CurrentN, Branch: meta.CurrentBranch})
		if ok {
			isAncestor, err := tree.IsAncestor(targetID, curID)
			if err != nil {
				return err
			}
			if isAncestor {
				return vcerrors.ErrInvalidVersion
			}
		}

		descendants, err := tree.Succ(targetID)
		if err != nil {
			return err
		}
		subtree := append(descendants, targetID)

		node, ok := tree.Node(targetID)
		if !ok {
			return vcerrors.ErrInvalidVersion
		}
		parentID := node.ParentID

		deletedIDs := make(map[string]bool, len(subtree))
		affectedBranches := make(map[string]bool, len(subtree))
		for _, id := range subtree {
			deletedIDs[id] = true
			if n, ok := tree.Node(id); ok {
				affectedBranches[n.Version.Branch] = true
			}
		}

		_, err = e.st.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
			logIDs := make([]string, 0, len(subtree))
			var deletedDeltas []*store.DeltaRecord
			for _, id := range subtree {
				logIDs = append(logIDs, id)
				n, ok := tree.Node(id)
				if !ok {
					continue
				}
				deltaRecords, err := e.st.Deltas.AllAtVersion(sessCtx, n.Version.N, n.Version.Branch)
				if err != nil {
					return nil, err
				}
				deletedDeltas = append(deletedDeltas, deltaRecords...)
			}

			deletedDeltaIDs := make(map[string]bool, len(deletedDeltas))
			for _, d := range deletedDeltas {
				deletedDeltaIDs[d.ID] = true
			}
			deltaIDs := make([]string, 0, len(deletedDeltas))
			for _, d := range deletedDeltas {
				deltaIDs = append(deltaIDs, d.ID)
			}
			if err := e.st.Deltas.DeleteMany(sessCtx, deltaIDs); err != nil {
				return nil, err
			}
			// A deleted delta's prev_id either points at another deleted delta,
			// which needs no cleanup since that record is gone too, or at a
			// surviving ancestor whose next_ids would otherwise keep pointing at
			// a delta that no longer exists.
			for _, d := range deletedDeltas {
				if d.PrevID == "" || deletedDeltaIDs[d.PrevID] {
					continue
				}
				if err := e.st.Deltas.RemoveNextID(sessCtx, d.PrevID, d.ID); err != nil {
					return nil, err
				}
			}

			if err := e.st.Log.DeleteMany(sessCtx, logIDs); err != nil {
				return nil, err
			}
			if parentID != "" {
				if err := e.st.Log.RemoveNextID(sessCtx, parentID, targetID); err != nil {
					return nil, err
				}
			}

			allEntries, err := e.st.Log.All(sessCtx)
			if err != nil {
				return nil, err
			}
			survivingTip := make(map[string]int)
			for _, entry := range allEntries {
				if deletedIDs[entry.ID] {
					continue
				}
				if !affectedBranches[entry.Branch] {
					continue
				}
				if cur, ok := survivingTip[entry.Branch]; !ok || entry.N > cur {
					survivingTip[entry.Branch] = entry.N
				}
			}
			for name := range affectedBranches {
				if tipN, ok := survivingTip[name]; ok {
					if err := e.st.Branches.Upsert(sessCtx, &store.BranchRecord{Name: name, TipN: tipN, TipBranch: name}); err != nil {
						return nil, err
					}
				} else if err := e.st.Branches.Delete(sessCtx, name); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			return err
		}

		e.invalidateCache()
		return nil
	})
}
