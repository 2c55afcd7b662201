// Package logtree holds the in-memory log tree the versioning engine
// navigates: one node per registered version, keyed by (n, branch), with
// parent/child edges mirroring the `log` auxiliary collection's prev_id and
// next_ids fields.
package logtree

import (
	"fmt"
	"sort"
	"time"

	"github.com/mongovc/mongovc/internal/store"
)

// Version identifies a log node the way the engine addresses one: its
// sequence number on its branch, plus the branch name.
type Version struct {
	N      int
	Branch string
}

func (v Version) String() string {
	return fmt.Sprintf("(%d,%s)", v.N, v.Branch)
}

// Node is one version in the tree, with its precomputed depth from root.
type Node struct {
	ID        string
	Version   Version
	Timestamp time.Time
	Message   string
	ParentID  string
	ChildIDs  []string
	Level     int
}

// Tree is the loaded log tree for one target collection, addressable either
// by entry id or by (n, branch).
type Tree struct {
	nodes   map[string]*Node
	byVer   map[Version]string
	rootID  string
}

// Build constructs a Tree from the full set of log entries, precomputing
// each node's level by walking down from the root.
func Build(entries []*store.LogEntry) (*Tree, error) {
	t := &Tree{
		nodes: make(map[string]*Node, len(entries)),
		byVer: make(map[Version]string, len(entries)),
	}

	var root string
	for _, e := range entries {
		n := &Node{
			ID:        e.ID,
			Version:   Version{N: e.N, Branch: e.Branch},
			Timestamp: e.Timestamp,
			Message:   e.Message,
			ParentID:  e.PrevID,
			ChildIDs:  append([]string(nil), e.NextIDs...),
		}
		t.nodes[n.ID] = n
		t.byVer[n.Version] = n.ID
		if e.PrevID == "" {
			if root != "" {
				return nil, fmt.Errorf("log tree has multiple roots: %s and %s", root, e.ID)
			}
			root = e.ID
		}
	}
	if root == "" && len(entries) > 0 {
		return nil, fmt.Errorf("log tree has no root")
	}
	t.rootID = root

	if root != "" {
		if err := t.computeLevels(root, 0, make(map[string]bool)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) computeLevels(id string, level int, visiting map[string]bool) error {
	if visiting[id] {
		return fmt.Errorf("log tree has a cycle at %s", id)
	}
	visiting[id] = true
	defer delete(visiting, id)

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("log tree references unknown node %s", id)
	}
	n.Level = level
	for _, childID := range n.ChildIDs {
		if err := t.computeLevels(childID, level+1, visiting); err != nil {
			return err
		}
	}
	return nil
}

// RootID returns the id of the root version, "" if the tree is empty.
func (t *Tree) RootID() string {
	return t.rootID
}

// Node fetches a node by id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Lookup resolves (n, branch) to a node id.
func (t *Tree) Lookup(v Version) (string, bool) {
	id, ok := t.byVer[v]
	return id, ok
}

// Parent returns the id of id's parent, "" if id is the root.
func (t *Tree) Parent(id string) (string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return "", fmt.Errorf("unknown node %s", id)
	}
	return n.ParentID, nil
}

// Children returns id's children, ordered by timestamp ascending and, for
// ties, lexicographically by branch.
func (t *Tree) Children(id string) ([]string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %s", id)
	}
	children := append([]string(nil), n.ChildIDs...)
	sort.Slice(children, func(i, j int) bool {
		ni, nj := t.nodes[children[i]], t.nodes[children[j]]
		if !ni.Timestamp.Equal(nj.Timestamp) {
			return ni.Timestamp.Before(nj.Timestamp)
		}
		return ni.Version.Branch < nj.Version.Branch
	})
	return children, nil
}

// IsAncestor reports whether a is an ancestor of (or equal to) b.
func (t *Tree) IsAncestor(a, b string) (bool, error) {
	cur := b
	for {
		if cur == a {
			return true, nil
		}
		n, ok := t.nodes[cur]
		if !ok {
			return false, fmt.Errorf("unknown node %s", cur)
		}
		if n.ParentID == "" {
			return false, nil
		}
		cur = n.ParentID
	}
}

// LCA returns the lowest common ancestor of u and v: walk the deeper node up
// until levels match, then walk both up in lockstep until they coincide.
func (t *Tree) LCA(u, v string) (string, error) {
	nu, ok := t.nodes[u]
	if !ok {
		return "", fmt.Errorf("unknown node %s", u)
	}
	nv, ok := t.nodes[v]
	if !ok {
		return "", fmt.Errorf("unknown node %s", v)
	}

	for nu.Level > nv.Level {
		u = nu.ParentID
		nu = t.nodes[u]
	}
	for nv.Level > nu.Level {
		v = nv.ParentID
		nv = t.nodes[v]
	}
	for u != v {
		u = nu.ParentID
		v = nv.ParentID
		nu = t.nodes[u]
		nv = t.nodes[v]
	}
	return u, nil
}

// Succ returns every descendant of v (not including v).
func (t *Tree) Succ(v string) ([]string, error) {
	if _, ok := t.nodes[v]; !ok {
		return nil, fmt.Errorf("unknown node %s", v)
	}
	var out []string
	var walk func(id string)
	walk = func(id string) {
		n := t.nodes[id]
		for _, c := range n.ChildIDs {
			out = append(out, c)
			walk(c)
		}
	}
	walk(v)
	return out, nil
}

// Pred returns every ancestor of v up to and including the root.
func (t *Tree) Pred(v string) ([]string, error) {
	n, ok := t.nodes[v]
	if !ok {
		return nil, fmt.Errorf("unknown node %s", v)
	}
	var out []string
	for n.ParentID != "" {
		out = append(out, n.ParentID)
		n = t.nodes[n.ParentID]
	}
	return out, nil
}
