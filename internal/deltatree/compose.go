// Package deltatree composes the per-document deltas recorded along a log
// tree path into the single delta that transforms a document from its state
// at the path's start to its state at the path's end.
//
// The teacher's equivalent of rebuilding a disconnected delta subtree
// (per-document deltas form one tree per branch they were independently
// created on) is sidestepped here: walking the already-computed log tree
// path and treating a document's absence at a path position as an identity
// delta produces the same composed result without ever materializing tree
// topology for the deltas themselves.
package deltatree

import (
	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
)

// Lookup resolves the delta record for a document at a given log tree
// version, if one was recorded there.
type Lookup func(v logtree.Version) (*store.DeltaRecord, bool)

// NewLookup indexes a document's delta records by (n, branch) for use as a
// Lookup during a single ComposePath call.
func NewLookup(records []*store.DeltaRecord) Lookup {
	index := make(map[logtree.Version]*store.DeltaRecord, len(records))
	for _, r := range records {
		index[logtree.Version{N: r.VersionN, Branch: r.Branch}] = r
	}
	return func(v logtree.Version) (*store.DeltaRecord, bool) {
		r, ok := index[v]
		return r, ok
	}
}

// ComposePath composes the deltas a document carries along path into one
// delta that transforms it from its state at the path's start to its state
// at the path's end. A path position the document has no delta at
// contributes nothing: the document is unchanged across that step.
func ComposePath(tree *logtree.Tree, path []logtree.Step, lookup Lookup) (codec.Delta, error) {
	composed := codec.Identity()

	for _, step := range path {
		node, ok := tree.Node(step.NodeID)
		if !ok {
			continue
		}
		rec, ok := lookup(node.Version)
		if !ok {
			continue
		}

		forward, err := codec.DecodeOpsHalf(rec.Forward)
		if err != nil {
			return codec.Delta{}, err
		}
		backward, err := codec.DecodeOpsHalf(rec.Backward)
		if err != nil {
			return codec.Delta{}, err
		}
		d := codec.Delta{Forward: forward, Backward: backward}

		side := d
		if step.Direction == logtree.Backward {
			side = codec.Delta{Forward: d.Backward, Backward: d.Forward}
		}
		composed = codec.Compose(composed, side)
	}

	return composed, nil
}

// Apply transforms doc by composed, materializing an inserted document or
// removing a deleted one as dictated by the result: an absent document is
// represented as an empty map, so a net insert or delete along the path
// shows up as the corresponding leaf set transitioning to or from that
// sentinel, exactly like any other field-level change.
func Apply(doc codec.Value, composed codec.Delta) (codec.Value, error) {
	return codec.Apply(doc, composed, codec.Forward)
}
