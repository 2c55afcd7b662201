package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/deltatree"
	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Pull brings branch's remote history into local. If the local tip is an
// ancestor of (or equal to) the remote tip, this is a plain fast-forward:
// the branch pointer moves and the local engine checks out the new tip. If
// the two have diverged, Pull three-way merges every document touched on
// either side since their common ancestor and registers the result as a
// new version whose parent is the local tip, returning ErrAutoMergeFailed
// (after committing the merge) if any document left a conflict behind for
// ResolveConflicts to clear.
func (s *Syncer) Pull(ctx context.Context, branch string) error {
	return s.withBothLocked(ctx, true, func() error {
		localSt := s.local.Store()
		remoteSt := s.remote.Store()

		meta, err := localSt.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if meta == nil {
			return vcerrors.ErrNotInitialized
		}
		if meta.HasConflicts {
			return vcerrors.ErrUnresolvedConflicts
		}
		count, err := localSt.Modified.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return vcerrors.ErrUncommittedChanges
		}

		remoteBranch, err := remoteSt.Branches.Get(ctx, branch)
		if err != nil {
			return err
		}
		if remoteBranch == nil || remoteBranch.TipN < 0 {
			return vcerrors.ErrUnknownBranch
		}

		if err := fetchAll(ctx, localSt, remoteSt); err != nil {
			return err
		}
		s.local.InvalidateCache()

		tree, err := s.local.LogTree(ctx)
		if err != nil {
			return err
		}
		remoteTipID, ok := tree.Lookup(logtree.Version{N: remoteBranch.TipN, Branch: branch})
		if !ok {
			return fmt.Errorf("sync: fetched remote tip (%d,%s) missing from local log tree", remoteBranch.TipN, branch)
		}

		localBranch, err := localSt.Branches.Get(ctx, branch)
		if err != nil {
			return err
		}
		if localBranch == nil || localBranch.TipN < 0 {
			if err := localSt.Branches.Upsert(ctx, &store.BranchRecord{Name: branch, TipN: remoteBranch.TipN, TipBranch: branch}); err != nil {
				return err
			}
			return s.local.Checkout(ctx, remoteBranch.TipN, branch)
		}

		localTipID, ok := tree.Lookup(logtree.Version{N: localBranch.TipN, Branch: branch})
		if !ok {
			return fmt.Errorf("sync: local branch tip (%d,%s) missing from log tree", localBranch.TipN, branch)
		}
		if localTipID == remoteTipID {
			return nil
		}

		isAncestor, err := tree.IsAncestor(localTipID, remoteTipID)
		if err != nil {
			return err
		}
		if isAncestor {
			if err := localSt.Branches.Upsert(ctx, &store.BranchRecord{Name: branch, TipN: remoteBranch.TipN, TipBranch: branch}); err != nil {
				return err
			}
			return s.local.Checkout(ctx, remoteBranch.TipN, branch)
		}

		return s.merge(ctx, tree, branch, localTipID, remoteTipID)
	})
}

// merge three-way merges every document touched since the branches'
// lowest common ancestor, registering the outcome as one new version on
// branch whose parent is localTipID. It keeps the log linear: the
// remote side of the merge is recorded in the version's message, not as a
// second parent edge, since LogEntry only carries one.
func (s *Syncer) merge(ctx context.Context, tree *logtree.Tree, branch, localTipID, remoteTipID string) error {
	localSt := s.local.Store()

	lca, err := tree.LCA(localTipID, remoteTipID)
	if err != nil {
		return err
	}
	rootToLCA, err := tree.Path(tree.RootID(), lca)
	if err != nil {
		return err
	}
	destPath, err := tree.Path(lca, localTipID)
	if err != nil {
		return err
	}
	sourcePath, err := tree.Path(lca, remoteTipID)
	if err != nil {
		return err
	}

	documentIDs := make(map[string]struct{})
	for _, path := range [][]logtree.Step{destPath, sourcePath} {
		for _, step := range path {
			node, ok := tree.Node(step.NodeID)
			if !ok {
				continue
			}
			records, err := localSt.Deltas.AllAtVersion(ctx, node.Version.N, node.Version.Branch)
			if err != nil {
				return err
			}
			for _, r := range records {
				documentIDs[r.DocumentID] = struct{}{}
			}
		}
	}

	localBranch, err := localSt.Branches.Get(ctx, branch)
	if err != nil {
		return err
	}
	newN := localBranch.TipN + 1
	now := time.Now()

	var hasConflict bool
	_, err = localSt.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
		var deltaRecords []*store.DeltaRecord
		hasConflict = false

		for documentID := range documentIDs {
			idVal, err := codec.DocumentKeyToValue(documentID)
			if err != nil {
				return nil, err
			}
			rawID := idVal.ToBSON()

			records, err := s.local.DeltasFor(sessCtx, documentID)
			if err != nil {
				return nil, err
			}
			lookup := deltatree.NewLookup(records)

			baseDelta, err := deltatree.ComposePath(tree, rootToLCA, lookup)
			if err != nil {
				return nil, err
			}
			base, err := deltatree.Apply(codec.EmptyMap(), baseDelta)
			if err != nil {
				return nil, err
			}

			destDelta, err := deltatree.ComposePath(tree, destPath, lookup)
			if err != nil {
				return nil, err
			}
			dest, err := deltatree.Apply(base, destDelta)
			if err != nil {
				return nil, err
			}

			sourceDelta, err := deltatree.ComposePath(tree, sourcePath, lookup)
			if err != nil {
				return nil, err
			}
			source, err := deltatree.Apply(base, sourceDelta)
			if err != nil {
				return nil, err
			}

			merged, conflicts := codec.ThreeWayMerge(base, dest, source)

			if len(conflicts) > 0 {
				hasConflict = true
				destBytes, err := codec.EncodeValueBytes(dest)
				if err != nil {
					return nil, err
				}
				sourceBytes, err := codec.EncodeValueBytes(source)
				if err != nil {
					return nil, err
				}
				mergedBytes, err := codec.EncodeValueBytes(merged)
				if err != nil {
					return nil, err
				}
				if err := localSt.Conflicts.Upsert(sessCtx, &store.Conflict{
					DocumentID:        documentID,
					Destination:       destBytes,
					Source:            sourceBytes,
					Merged:            mergedBytes,
					DestinationBranch: branch,
					SourceBranch:      branch,
				}); err != nil {
					return nil, err
				}
			}

			delta := codec.Diff(dest, merged)
			if !delta.IsIdentity() {
				fwd, err := codec.EncodeOpsHalf(delta.Forward)
				if err != nil {
					return nil, err
				}
				bwd, err := codec.EncodeOpsHalf(delta.Backward)
				if err != nil {
					return nil, err
				}
				deltaRecords = append(deltaRecords, &store.DeltaRecord{
					ID:         xid.New().String(),
					DocumentID: documentID,
					VersionN:   newN,
					Branch:     branch,
					Timestamp:  now,
					Forward:    fwd,
					Backward:   bwd,
				})
			}

			if err := materialize(sessCtx, localSt, rawID, merged); err != nil {
				return nil, err
			}
		}

		if err := localSt.Deltas.InsertMany(sessCtx, deltaRecords); err != nil {
			return nil, err
		}

		entryID := xid.New().String()
		message := fmt.Sprintf("merge remote %s into %s", s.remote.Identity(), branch)
		logEntry := &store.LogEntry{
			ID:        entryID,
			N:         newN,
			Branch:    branch,
			Timestamp: now,
			Message:   message,
			PrevID:    localTipID,
		}
		if err := localSt.Log.Insert(sessCtx, logEntry); err != nil {
			return nil, err
		}
		if err := localSt.Log.AppendNextID(sessCtx, localTipID, entryID); err != nil {
			return nil, err
		}
		if err := localSt.Branches.Upsert(sessCtx, &store.BranchRecord{Name: branch, TipN: newN, TipBranch: branch}); err != nil {
			return nil, err
		}
		if err := localSt.Metadata.Update(sessCtx, bson.M{
			"current_n":      newN,
			"current_branch": branch,
			"detached":       false,
			"changed":        false,
			"has_conflicts":  hasConflict,
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.local.InvalidateCache()

	if hasConflict {
		return vcerrors.ErrAutoMergeFailed
	}
	return nil
}

// materialize writes merged as the current state of the document with the
// given raw _id on both the target and replica collections, the same
// write shape a checkout performs.
func materialize(ctx context.Context, st *store.Store, rawID any, merged codec.Value) error {
	if merged.Kind == codec.KindMap && len(merged.Map) == 0 {
		if err := st.Replica.Delete(ctx, rawID); err != nil {
			return err
		}
		_, err := st.Target.DeleteOne(ctx, bson.M{"_id": rawID})
		return err
	}

	doc, ok := merged.ToBSON().(bson.M)
	if !ok {
		return fmt.Errorf("sync: merged value is not a document")
	}
	doc["_id"] = rawID
	if err := st.Replica.Upsert(ctx, doc); err != nil {
		return err
	}
	_, err := st.Target.ReplaceOne(ctx, bson.M{"_id": rawID}, doc, replaceUpsert())
	return err
}
