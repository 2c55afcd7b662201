package engine

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/deltatree"
	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// checkoutApply is the composed outcome for one document's checkout: either
// newDoc is the BSON to upsert onto the target and replica, or delete is
// true and both collections drop the document instead.
type checkoutApply struct {
	rawID  any
	newDoc bson.M
	delete bool
}

// Checkout moves the tracked collection to version (n, branch): it composes,
// for every document touched between the current version and the target
// along the log tree, the delta that carries it from one state to the
// other, and applies the result to both the target collection and the
// replica. It fails with ErrUncommittedChanges if there are pending changes
// neither registered, stashed, nor discarded.
func (e *Engine) Checkout(ctx context.Context, n int, branch string) error {
	return e.withLock(ctx, true, func() error {
		if err := e.fence(ctx); err != nil {
			return err
		}

		meta, err := e.requireMetadata(ctx)
		if err != nil {
			return err
		}
		count, err := e.st.Modified.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return vcerrors.ErrUncommittedChanges
		}

		tree, err := e.logTree(ctx)
		if err != nil {
			return err
		}
		curID, ok := tree.Lookup(logtree.Version{N: meta.CurrentN, Branch: meta.CurrentBranch})
		if !ok {
			return fmt.Errorf("engine: current version (%d,%s) missing from log tree", meta.CurrentN, meta.CurrentBranch)
		}
		targetID, ok := tree.Lookup(logtree.Version{N: n, Branch: branch})
		if !ok {
			return vcerrors.ErrInvalidVersion
		}

		path, err := tree.Path(curID, targetID)
		if err != nil {
			return err
		}

		documentIDs := make(map[string]struct{})
		for _, step := range path {
			node, ok := tree.Node(step.NodeID)
			if !ok {
				continue
			}
			records, err := e.st.Deltas.AllAtVersion(ctx, node.Version.N, node.Version.Branch)
			if err != nil {
				return err
			}
			for _, r := range records {
				documentIDs[r.DocumentID] = struct{}{}
			}
		}

		// Composing each document's target value only reads (deltas, the
		// current replica snapshot) and touches no shared mutable state
		// beyond the already-synchronized delta cache, so every document in
		// documentIDs is computed concurrently before the transaction that
		// applies the results opens.
		ids := make([]string, 0, len(documentIDs))
		for documentID := range documentIDs {
			ids = append(ids, documentID)
		}
		applies := make([]checkoutApply, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.conf.CheckoutFanout)
		for i, documentID := range ids {
			i, documentID := i, documentID
			g.Go(func() error {
				idVal, err := codec.DocumentKeyToValue(documentID)
				if err != nil {
					return err
				}
				rawID := idVal.ToBSON()

				records, err := e.deltasFor(gctx, documentID)
				if err != nil {
					return err
				}
				lookup := deltatree.NewLookup(records)
				composed, err := deltatree.ComposePath(tree, path, lookup)
				if err != nil {
					return err
				}

				prevDoc, err := e.st.Replica.Get(gctx, rawID)
				if err != nil {
					return err
				}
				prevVal := emptyMapValue()
				if prevDoc != nil {
					prevVal, err = codec.FromBSON(prevDoc)
					if err != nil {
						return err
					}
				}

				newVal, err := deltatree.Apply(prevVal, composed)
				if err != nil {
					return err
				}

				if newVal.Kind == codec.KindMap && len(newVal.Map) == 0 {
					applies[i] = checkoutApply{rawID: rawID, delete: true}
					return nil
				}

				doc, ok := newVal.ToBSON().(bson.M)
				if !ok {
					return fmt.Errorf("engine: checked-out document %s is not a map", documentID)
				}
				doc["_id"] = rawID
				applies[i] = checkoutApply{rawID: rawID, newDoc: doc}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		_, err = e.st.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
			for _, a := range applies {
				if a.delete {
					if err := e.st.Replica.Delete(sessCtx, a.rawID); err != nil {
						return nil, err
					}
					if _, err := e.st.Target.DeleteOne(sessCtx, bson.M{"_id": a.rawID}); err != nil {
						return nil, err
					}
					continue
				}
				if err := e.st.Replica.Upsert(sessCtx, a.newDoc); err != nil {
					return nil, err
				}
				if _, err := e.st.Target.ReplaceOne(sessCtx, bson.M{"_id": a.rawID}, a.newDoc, replaceUpsert()); err != nil {
					return nil, err
				}
			}

			branchRec, err := e.st.Branches.Get(sessCtx, branch)
			if err != nil {
				return nil, err
			}
			detached := branchRec == nil || branchRec.TipN != n
			if err := e.st.Metadata.Update(sessCtx, bson.M{
				"current_n":      n,
				"current_branch": branch,
				"detached":       detached,
				"changed":        false,
			}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		return err
	})
}
