package deltatree_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/deltatree"
	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
)

func deltaRecord(t *testing.T, n int, branch string, a, b codec.Value) *store.DeltaRecord {
	d := codec.Diff(a, b)
	forward, err := codec.EncodeOpsHalf(d.Forward)
	require.NoError(t, err)
	backward, err := codec.EncodeOpsHalf(d.Backward)
	require.NoError(t, err)
	return &store.DeltaRecord{
		VersionN: n,
		Branch:   branch,
		Forward:  forward,
		Backward: backward,
	}
}

func mapVal(fields map[string]codec.Value) codec.Value {
	return codec.Value{Kind: codec.KindMap, Map: fields}
}

func TestComposePathAppliesForwardAlongChain(t *testing.T) {
	base := time.Now()
	entries := []*store.LogEntry{
		{ID: "v0", N: 0, Branch: "main", Timestamp: base, NextIDs: []string{"v1"}},
		{ID: "v1", N: 1, Branch: "main", Timestamp: base.Add(time.Minute), PrevID: "v0", NextIDs: []string{"v2"}},
		{ID: "v2", N: 2, Branch: "main", Timestamp: base.Add(2 * time.Minute), PrevID: "v1"},
	}
	tree, err := logtree.Build(entries)
	require.NoError(t, err)

	empty := mapVal(map[string]codec.Value{})
	stateAt1 := mapVal(map[string]codec.Value{"a": {Kind: codec.KindInt, Int: 1}})
	stateAt2 := mapVal(map[string]codec.Value{"a": {Kind: codec.KindInt, Int: 2}})

	records := []*store.DeltaRecord{
		deltaRecord(t, 1, "main", empty, stateAt1),
		deltaRecord(t, 2, "main", stateAt1, stateAt2),
	}
	lookup := deltatree.NewLookup(records)

	v0, _ := tree.Lookup(logtree.Version{N: 0, Branch: "main"})
	v2, _ := tree.Lookup(logtree.Version{N: 2, Branch: "main"})
	path, err := tree.Path(v0, v2)
	require.NoError(t, err)

	composed, err := deltatree.ComposePath(tree, path, lookup)
	require.NoError(t, err)

	result, err := deltatree.Apply(empty, composed)
	require.NoError(t, err)
	assert.True(t, result.Equal(stateAt2))
}

func TestComposePathBackwardUndoesChain(t *testing.T) {
	base := time.Now()
	entries := []*store.LogEntry{
		{ID: "v0", N: 0, Branch: "main", Timestamp: base, NextIDs: []string{"v1"}},
		{ID: "v1", N: 1, Branch: "main", Timestamp: base.Add(time.Minute), PrevID: "v0"},
	}
	tree, err := logtree.Build(entries)
	require.NoError(t, err)

	empty := mapVal(map[string]codec.Value{})
	stateAt1 := mapVal(map[string]codec.Value{"a": {Kind: codec.KindInt, Int: 1}})

	records := []*store.DeltaRecord{
		deltaRecord(t, 1, "main", empty, stateAt1),
	}
	lookup := deltatree.NewLookup(records)

	v0, _ := tree.Lookup(logtree.Version{N: 0, Branch: "main"})
	v1, _ := tree.Lookup(logtree.Version{N: 1, Branch: "main"})
	path, err := tree.Path(v1, v0)
	require.NoError(t, err)

	composed, err := deltatree.ComposePath(tree, path, lookup)
	require.NoError(t, err)

	result, err := deltatree.Apply(stateAt1, composed)
	require.NoError(t, err)
	assert.True(t, result.Equal(empty))
}

func TestComposePathSkipsDocumentAbsentFromPath(t *testing.T) {
	base := time.Now()
	entries := []*store.LogEntry{
		{ID: "v0", N: 0, Branch: "main", Timestamp: base, NextIDs: []string{"v1"}},
		{ID: "v1", N: 1, Branch: "main", Timestamp: base.Add(time.Minute), PrevID: "v0"},
	}
	tree, err := logtree.Build(entries)
	require.NoError(t, err)

	lookup := deltatree.NewLookup(nil)

	v0, _ := tree.Lookup(logtree.Version{N: 0, Branch: "main"})
	v1, _ := tree.Lookup(logtree.Version{N: 1, Branch: "main"})
	path, err := tree.Path(v0, v1)
	require.NoError(t, err)

	composed, err := deltatree.ComposePath(tree, path, lookup)
	require.NoError(t, err)
	assert.True(t, composed.IsIdentity())
}
