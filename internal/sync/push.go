package sync

import (
	"context"
	"fmt"

	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Push advances the remote's branch pointer for branch to the local tip, if
// and only if the remote's current tip (if any) is an ancestor of the local
// one. It copies every log entry and delta record the remote is missing but
// never writes to the remote's target or replica collections: the remote
// side of a push is a bare history, materialized only when something
// checks it out.
func (s *Syncer) Push(ctx context.Context, branch string) error {
	return s.withBothLocked(ctx, true, func() error {
		localSt := s.local.Store()
		remoteSt := s.remote.Store()

		localMeta, err := localSt.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if localMeta == nil {
			return vcerrors.ErrNotInitialized
		}
		if localMeta.HasConflicts {
			return vcerrors.ErrUnresolvedConflicts
		}

		localBranch, err := localSt.Branches.Get(ctx, branch)
		if err != nil {
			return err
		}
		if localBranch == nil || localBranch.TipN < 0 {
			return vcerrors.ErrUnknownBranch
		}

		localTree, err := s.local.LogTree(ctx)
		if err != nil {
			return err
		}
		localTipID, ok := localTree.Lookup(logtree.Version{N: localBranch.TipN, Branch: branch})
		if !ok {
			return fmt.Errorf("sync: local branch tip (%d,%s) missing from log tree", localBranch.TipN, branch)
		}

		remoteBranch, err := remoteSt.Branches.Get(ctx, branch)
		if err != nil {
			return err
		}
		if remoteBranch != nil && remoteBranch.TipN >= 0 {
			remoteTipID, ok := localTree.Lookup(logtree.Version{N: remoteBranch.TipN, Branch: branch})
			if !ok {
				// The remote has a commit on this branch the local tree has
				// never heard of: it cannot possibly be an ancestor.
				return vcerrors.ErrNonFastForward
			}
			isAncestor, err := localTree.IsAncestor(remoteTipID, localTipID)
			if err != nil {
				return err
			}
			if !isAncestor {
				return vcerrors.ErrNonFastForward
			}
		}

		if err := fetchAll(ctx, remoteSt, localSt); err != nil {
			return err
		}
		if err := remoteSt.Branches.Upsert(ctx, &store.BranchRecord{Name: branch, TipN: localBranch.TipN, TipBranch: branch}); err != nil {
			return err
		}
		s.remote.InvalidateCache()
		return nil
	})
}
