package logtree_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongovc/mongovc/internal/logtree"
	"github.com/mongovc/mongovc/internal/store"
)

// buildLine builds a straight chain 0 -> 1 -> 2 -> 3 on "main", then a
// branch "feature" forking off of version 1 with two more versions.
func buildLine(t *testing.T) *logtree.Tree {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []*store.LogEntry{
		{ID: "main-0", N: 0, Branch: "main", Timestamp: base, NextIDs: []string{"main-1"}},
		{ID: "main-1", N: 1, Branch: "main", Timestamp: base.Add(time.Minute), PrevID: "main-0", NextIDs: []string{"main-2", "feature-0"}},
		{ID: "main-2", N: 2, Branch: "main", Timestamp: base.Add(2 * time.Minute), PrevID: "main-1", NextIDs: []string{"main-3"}},
		{ID: "main-3", N: 3, Branch: "main", Timestamp: base.Add(3 * time.Minute), PrevID: "main-2"},
		{ID: "feature-0", N: 0, Branch: "feature", Timestamp: base.Add(time.Minute + time.Second), PrevID: "main-1", NextIDs: []string{"feature-1"}},
		{ID: "feature-1", N: 1, Branch: "feature", Timestamp: base.Add(2*time.Minute + time.Second), PrevID: "feature-0"},
	}

	tree, err := logtree.Build(entries)
	require.NoError(t, err)
	return tree
}

func TestBuildLevels(t *testing.T) {
	tree := buildLine(t)

	n0, ok := tree.Node("main-0")
	require.True(t, ok)
	assert.Equal(t, 0, n0.Level)

	n2, ok := tree.Node("main-2")
	require.True(t, ok)
	assert.Equal(t, 2, n2.Level)

	f1, ok := tree.Node("feature-1")
	require.True(t, ok)
	assert.Equal(t, 3, f1.Level)
}

func TestLookup(t *testing.T) {
	tree := buildLine(t)

	id, ok := tree.Lookup(logtree.Version{N: 1, Branch: "feature"})
	require.True(t, ok)
	assert.Equal(t, "feature-1", id)

	_, ok = tree.Lookup(logtree.Version{N: 9, Branch: "main"})
	assert.False(t, ok)
}

func TestLCASameBranch(t *testing.T) {
	tree := buildLine(t)

	lca, err := tree.LCA("main-1", "main-3")
	require.NoError(t, err)
	assert.Equal(t, "main-1", lca)
}

func TestLCAAcrossBranches(t *testing.T) {
	tree := buildLine(t)

	lca, err := tree.LCA("main-3", "feature-1")
	require.NoError(t, err)
	assert.Equal(t, "main-1", lca)
}

func TestPathEmptyWhenEqual(t *testing.T) {
	tree := buildLine(t)

	path, err := tree.Path("main-2", "main-2")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestPathAncestorSingleDirection(t *testing.T) {
	tree := buildLine(t)

	path, err := tree.Path("main-1", "main-3")
	require.NoError(t, err)
	require.Len(t, path, 2)
	for _, step := range path {
		assert.Equal(t, logtree.Forward, step.Direction)
	}
	assert.Equal(t, "main-2", path[0].NodeID)
	assert.Equal(t, "main-3", path[1].NodeID)
}

func TestPathAcrossBranches(t *testing.T) {
	tree := buildLine(t)

	path, err := tree.Path("main-3", "feature-1")
	require.NoError(t, err)

	require.Len(t, path, 4)
	assert.Equal(t, "main-3", path[0].NodeID)
	assert.Equal(t, logtree.Backward, path[0].Direction)
	assert.Equal(t, "main-2", path[1].NodeID)
	assert.Equal(t, logtree.Backward, path[1].Direction)
	assert.Equal(t, "feature-0", path[2].NodeID)
	assert.Equal(t, logtree.Forward, path[2].Direction)
	assert.Equal(t, "feature-1", path[3].NodeID)
	assert.Equal(t, logtree.Forward, path[3].Direction)
}

func TestSuccAndPred(t *testing.T) {
	tree := buildLine(t)

	succ, err := tree.Succ("main-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main-2", "main-3", "feature-0", "feature-1"}, succ)

	pred, err := tree.Pred("feature-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"feature-0", "main-1", "main-0"}, pred)
}

func TestIsAncestor(t *testing.T) {
	tree := buildLine(t)

	ok, err := tree.IsAncestor("main-0", "feature-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tree.IsAncestor("feature-1", "main-3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChildrenOrderingByTimestamp(t *testing.T) {
	tree := buildLine(t)

	children, err := tree.Children("main-1")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "feature-0", children[0])
	assert.Equal(t, "main-2", children[1])
}
