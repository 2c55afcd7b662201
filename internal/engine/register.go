package engine

import (
	"context"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/deltatree"
	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Register commits every pending change the listener has tracked since the
// last register into a new version. If branch is non-empty, the version is
// registered onto that branch instead of the current one: a branch that
// already has commits is continued from its tip, and a new (or still
// commit-less) branch forks from the checked-out version. If there is
// nothing pending and no branch was given, Register is a no-op.
func (e *Engine) Register(ctx context.Context, message, branch string) error {
	return e.withLock(ctx, true, func() error {
		if err := e.fence(ctx); err != nil {
			return err
		}

		meta, err := e.requireMetadata(ctx)
		if err != nil {
			return err
		}
		if meta.HasConflicts {
			return vcerrors.ErrUnresolvedConflicts
		}

		modifiedList, err := e.st.Modified.All(ctx)
		if err != nil {
			return err
		}
		if len(modifiedList) == 0 && branch == "" {
			return nil
		}
		tree, err := e.logTree(ctx)
		if err != nil {
			return err
		}
		if branch == "" && meta.Detached {
			return vcerrors.ErrDetachedWithoutBranch
		}

		targetBranch := meta.CurrentBranch
		if branch != "" {
			targetBranch = branch
		}

		_, err = e.st.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
			branchRec, err := e.st.Branches.Get(sessCtx, targetBranch)
			if err != nil {
				return nil, err
			}

			var parentN int
			var parentBranch string
			var newN int
			switch {
			case branchRec != nil && branchRec.TipN >= 0:
				parentN, parentBranch = branchRec.TipN, targetBranch
				newN = branchRec.TipN + 1
			case branchRec == nil && branch == "":
				return nil, vcerrors.ErrUnknownBranch
			default:
				// Either a brand new branch name, or one created via CreateBranch
				// that has no commits yet (TipN == -1): fork from wherever the
				// caller is currently checked out.
				parentN, parentBranch = meta.CurrentN, meta.CurrentBranch
				newN = 0
			}
			parentEntry, err := e.st.Log.GetByVersion(sessCtx, parentN, parentBranch)
			if err != nil {
				return nil, err
			}
			parentID := ""
			if parentEntry != nil {
				parentID = parentEntry.ID
			}

			// D1: a new delta's prev_id is the nearest ancestor delta for the
			// same document walking from the log root to this commit's
			// parent. rootToParent holds that walk once per register call;
			// each document searches it against its own prior records.
			var rootToParent []logtree.Step
			if parentID != "" {
				rootToParent, err = tree.Path(tree.RootID(), parentID)
				if err != nil {
					return nil, err
				}
			}

			now := time.Now()
			var deltaRecords []*store.DeltaRecord
			var nextIDLinks []struct{ prevID, childID string }
			for _, m := range modifiedList {
				idVal, err := codec.DocumentKeyToValue(m.DocumentID)
				if err != nil {
					return nil, err
				}
				rawID := idVal.ToBSON()

				prevDoc, err := e.st.Replica.Get(sessCtx, rawID)
				if err != nil {
					return nil, err
				}
				prevVal := emptyMapValue()
				if prevDoc != nil {
					prevVal, err = codec.FromBSON(prevDoc)
					if err != nil {
						return nil, err
					}
				}

				var curVal codec.Value
				var doc bson.M
				if m.Op != store.OpDelete {
					doc, err = rawDocument(sessCtx, e.st.Target, rawID)
					if err != nil {
						return nil, err
					}
					if doc == nil {
						curVal = emptyMapValue()
					} else {
						curVal, err = codec.FromBSON(doc)
						if err != nil {
							return nil, err
						}
					}
				} else {
					curVal = emptyMapValue()
				}

				delta := codec.Diff(prevVal, curVal)
				if delta.IsIdentity() {
					continue
				}

				fwd, err := codec.EncodeOpsHalf(delta.Forward)
				if err != nil {
					return nil, err
				}
				bwd, err := codec.EncodeOpsHalf(delta.Backward)
				if err != nil {
					return nil, err
				}

				newID := xid.New().String()
				priorRecords, err := e.deltasFor(sessCtx, m.DocumentID)
				if err != nil {
					return nil, err
				}
				prevID := nearestDocumentDelta(tree, rootToParent, parentID, priorRecords)
				if prevID != "" {
					nextIDLinks = append(nextIDLinks, struct{ prevID, childID string }{prevID, newID})
				}

				deltaRecords = append(deltaRecords, &store.DeltaRecord{
					ID:         newID,
					DocumentID: m.DocumentID,
					VersionN:   newN,
					Branch:     targetBranch,
					Timestamp:  now,
					Forward:    fwd,
					Backward:   bwd,
					PrevID:     prevID,
				})

				if m.Op == store.OpDelete {
					if err := e.st.Replica.Delete(sessCtx, rawID); err != nil {
						return nil, err
					}
				} else if err := e.st.Replica.Upsert(sessCtx, doc); err != nil {
					return nil, err
				}
			}

			if err := e.st.Deltas.InsertMany(sessCtx, deltaRecords); err != nil {
				return nil, err
			}
			for _, link := range nextIDLinks {
				if err := e.st.Deltas.AppendNextID(sessCtx, link.prevID, link.childID); err != nil {
					return nil, err
				}
			}

			entryID := xid.New().String()
			logEntry := &store.LogEntry{
				ID:        entryID,
				N:         newN,
				Branch:    targetBranch,
				Timestamp: now,
				Message:   message,
				PrevID:    parentID,
			}
			if err := e.st.Log.Insert(sessCtx, logEntry); err != nil {
				return nil, err
			}
			if parentID != "" {
				if err := e.st.Log.AppendNextID(sessCtx, parentID, entryID); err != nil {
					return nil, err
				}
			}
			if err := e.st.Branches.Upsert(sessCtx, &store.BranchRecord{Name: targetBranch, TipN: newN, TipBranch: targetBranch}); err != nil {
				return nil, err
			}
			if err := e.st.Modified.Clear(sessCtx); err != nil {
				return nil, err
			}
			if err := e.st.Metadata.Update(sessCtx, bson.M{
				"current_n":      newN,
				"current_branch": targetBranch,
				"detached":       false,
				"changed":        false,
			}); err != nil {
				return nil, err
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

// nearestDocumentDelta finds, among records, the one recorded at the
// version closest to parentID on the path from the log root, which is the
// new delta's prev_id per D1. tree.Path excludes its own endpoints' common
// ancestor when one is an ancestor of the other, which here is always the
// root, so the root's own version is checked separately from the walk.
func nearestDocumentDelta(tree *logtree.Tree, rootToParent []logtree.Step, parentID string, records []*store.DeltaRecord) string {
	if parentID == "" || len(records) == 0 {
		return ""
	}
	lookup := deltatree.NewLookup(records)

	prevID := ""
	if root, ok := tree.Node(tree.RootID()); ok {
		if rec, ok := lookup(root.Version); ok {
			prevID = rec.ID
		}
	}
	for _, step := range rootToParent {
		node, ok := tree.Node(step.NodeID)
		if !ok {
			continue
		}
		if rec, ok := lookup(node.Version); ok {
			prevID = rec.ID
		}
	}
	return prevID
}
