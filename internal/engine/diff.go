package engine

import (
	"context"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/deltatree"
	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// DocDiff is one document's change between two points being diffed.
type DocDiff struct {
	DocumentID string
	Before     codec.Value
	After      codec.Value
	Delta      codec.Delta
}

// DiffVersions reports every document that differs between (n1, branch1)
// and (n2, branch2), composing deltas along the log tree path between them
// exactly like Checkout, but without writing anything back.
func (e *Engine) DiffVersions(ctx context.Context, n1 int, branch1 string, n2 int, branch2 string) ([]DocDiff, error) {
	var out []DocDiff
	err := e.withLock(ctx, false, func() error {
		tree, err := e.logTree(ctx)
		if err != nil {
			return err
		}
		fromID, ok := tree.Lookup(logtree.Version{N: n1, Branch: branch1})
		if !ok {
			return vcerrors.ErrInvalidVersion
		}
		toID, ok := tree.Lookup(logtree.Version{N: n2, Branch: branch2})
		if !ok {
			return vcerrors.ErrInvalidVersion
		}

		path, err := tree.Path(fromID, toID)
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

		for documentID := range documentIDs {
			records, err := e.deltasFor(ctx, documentID)
			if err != nil {
				return err
			}
			lookup := deltatree.NewLookup(records)
			composed, err := deltatree.ComposePath(tree, path, lookup)
			if err != nil {
				return err
			}
			if composed.IsIdentity() {
				continue
			}
			out = append(out, DocDiff{DocumentID: documentID, Delta: composed})
		}
		return nil
	})
	return out, err
}

// DiffWorkingTree reports every document the listener has tracked as
// changed since the last register, comparing the replica (the state as of
// the checked-out version) against the live target collection.
func (e *Engine) DiffWorkingTree(ctx context.Context) ([]DocDiff, error) {
	var out []DocDiff
	err := e.withLock(ctx, false, func() error {
		if err := e.fence(ctx); err != nil {
			return err
		}
		modifiedList, err := e.st.Modified.All(ctx)
		if err != nil {
			return err
		}
		for _, m := range modifiedList {
			idVal, err := codec.DocumentKeyToValue(m.DocumentID)
			if err != nil {
				return err
			}
			rawID := idVal.ToBSON()

			prevDoc, err := e.st.Replica.Get(ctx, rawID)
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

			curVal, err := loadValue(ctx, e.st.Target, rawID)
			if err != nil {
				return err
			}

			delta := codec.Diff(prevVal, curVal)
			if delta.IsIdentity() {
				continue
			}
			out = append(out, DocDiff{DocumentID: m.DocumentID, Before: prevVal, After: curVal, Delta: delta})
		}
		return nil
	})
	return out, err
}
