package codec

import "fmt"

// OpKind distinguishes the two leaf-level edits a Delta is made of.
type OpKind byte

const (
	// OpSet creates or replaces the value at Path.
	OpSet OpKind = iota
	// OpDelete removes the value at Path.
	OpDelete
)

// Op is a single leaf-level edit against a document's flattened form.
type Op struct {
	Path  Path
	Kind  OpKind
	Value Value
}

// Delta is an invertible structural diff between two states of one
// document. Forward transforms the predecessor state into the successor
// state; Backward is its inverse. Both are expressed as sequential lists
// of leaf-level edits over the document's flattened representation, which
// makes Compose a simple, associative concatenation (see Compose).
type Delta struct {
	Forward  []Op
	Backward []Op
}

// Identity is the neutral element: applying it leaves any document
// unchanged in either direction.
func Identity() Delta {
	return Delta{}
}

// IsIdentity reports whether the delta has no effect in either direction.
func (d Delta) IsIdentity() bool {
	return len(d.Forward) == 0 && len(d.Backward) == 0
}

type leaf struct {
	path  Path
	value Value
}

// flatten decomposes a Value into its leaves: every path reachable by
// descending through non-empty maps/arrays down to a value that is
// itself a leaf scalar, an empty map, or an empty array. Empty
// containers are kept as leaves (rather than omitted) so that
// flatten/unflatten round-trips without losing "present but empty"
// structure.
func flatten(v Value, prefix Path, out map[string]leaf) {
	switch v.Kind {
	case KindMap:
		if len(v.Map) == 0 {
			out[prefix.key()] = leaf{path: prefix.Clone(), value: v}
			return
		}
		for k, child := range v.Map {
			flatten(child, appendKey(prefix, k), out)
		}
	case KindArray:
		if len(v.Array) == 0 {
			out[prefix.key()] = leaf{path: prefix.Clone(), value: v}
			return
		}
		for i, child := range v.Array {
			flatten(child, appendIndex(prefix, i), out)
		}
	default:
		out[prefix.key()] = leaf{path: prefix.Clone(), value: v}
	}
}

func flattenRoot(v Value) map[string]leaf {
	out := make(map[string]leaf)
	flatten(v, nil, out)
	return out
}

// unflatten reconstructs a Value from a set of leaves. A document with no
// leaves at all reconstructs to an empty map, matching the shape of a
// BSON document.
func unflatten(leaves map[string]leaf) Value {
	b := &builder{}
	for _, l := range leaves {
		b.insert(l.path, l.value)
	}
	return b.toValue()
}

type builder struct {
	isArray  bool
	isMap    bool
	leafVal  *Value
	mapKids  map[string]*builder
	arrKids  map[int]*builder
}

func (b *builder) insert(path Path, v Value) {
	if len(path) == 0 {
		val := v
		b.leafVal = &val
		return
	}
	seg := path[0]
	if seg.IsIndex {
		b.isArray = true
		if b.arrKids == nil {
			b.arrKids = make(map[int]*builder)
		}
		child, ok := b.arrKids[seg.Index]
		if !ok {
			child = &builder{}
			b.arrKids[seg.Index] = child
		}
		child.insert(path[1:], v)
	} else {
		b.isMap = true
		if b.mapKids == nil {
			b.mapKids = make(map[string]*builder)
		}
		child, ok := b.mapKids[seg.Key]
		if !ok {
			child = &builder{}
			b.mapKids[seg.Key] = child
		}
		child.insert(path[1:], v)
	}
}

func (b *builder) toValue() Value {
	if b.isMap {
		out := make(map[string]Value, len(b.mapKids))
		for k, child := range b.mapKids {
			out[k] = child.toValue()
		}
		return Value{Kind: KindMap, Map: out}
	}
	if b.isArray {
		maxIdx := -1
		for idx := range b.arrKids {
			if idx > maxIdx {
				maxIdx = idx
			}
		}
		out := make([]Value, maxIdx+1)
		for idx, child := range b.arrKids {
			out[idx] = child.toValue()
		}
		return Value{Kind: KindArray, Array: out}
	}
	if b.leafVal != nil {
		return *b.leafVal
	}
	return Value{Kind: KindMap, Map: map[string]Value{}}
}

// Diff computes the structural, invertible delta between a and b: applying
// Forward to a yields b; applying Backward to b yields a.
func Diff(a, b Value) Delta {
	aLeaves := flattenRoot(a)
	bLeaves := flattenRoot(b)

	var forward, backward []Op
	seen := make(map[string]bool, len(bLeaves))

	for k, bl := range bLeaves {
		seen[k] = true
		al, ok := aLeaves[k]
		if ok && al.value.Equal(bl.value) {
			continue
		}
		forward = append(forward, Op{Path: bl.path, Kind: OpSet, Value: bl.value})
		if ok {
			backward = append(backward, Op{Path: al.path, Kind: OpSet, Value: al.value})
		} else {
			backward = append(backward, Op{Path: bl.path, Kind: OpDelete})
		}
	}

	for k, al := range aLeaves {
		if seen[k] {
			continue
		}
		forward = append(forward, Op{Path: al.path, Kind: OpDelete})
		backward = append(backward, Op{Path: al.path, Kind: OpSet, Value: al.value})
	}

	return Delta{Forward: forward, Backward: backward}
}

// Side selects which half of a Delta to apply.
type Side int

const (
	// Forward applies the delta in its natural, predecessor→successor
	// direction.
	Forward Side = iota
	// Backward applies the delta's inverse, successor→predecessor.
	Backward
)

// Apply applies the given side of the delta to doc and returns the
// resulting document.
func Apply(doc Value, d Delta, side Side) (Value, error) {
	ops := d.Forward
	if side == Backward {
		ops = d.Backward
	}
	return applyOps(doc, ops)
}

func applyOps(doc Value, ops []Op) (Value, error) {
	leaves := flattenRoot(doc)
	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			leaves[op.Path.key()] = leaf{path: op.Path.Clone(), value: op.Value}
		case OpDelete:
			delete(leaves, op.Path.key())
		default:
			return Value{}, fmt.Errorf("codec: unknown op kind %d", op.Kind)
		}
	}
	return unflatten(leaves), nil
}

// Compose combines two deltas so that applying Compose(d1, d2).Forward is
// equivalent to applying d1.Forward then d2.Forward in sequence, and its
// Backward undoes that in reverse. Because Forward/Backward are simple
// ordered op lists interpreted against a document's flattened leaf map,
// concatenation satisfies this directly, making Compose associative with
// Identity as its unit.
func Compose(d1, d2 Delta) Delta {
	forward := make([]Op, 0, len(d1.Forward)+len(d2.Forward))
	forward = append(forward, d1.Forward...)
	forward = append(forward, d2.Forward...)

	backward := make([]Op, 0, len(d1.Backward)+len(d2.Backward))
	backward = append(backward, d2.Backward...)
	backward = append(backward, d1.Backward...)

	return Delta{Forward: forward, Backward: backward}
}

// Conflict records one leaf path that both sides of a three-way merge
// changed to different values.
type Conflict struct {
	Path            Path
	Destination     Value
	DestinationSet  bool
	Source          Value
	SourceSet       bool
}

// ThreeWayMerge merges dest and source, both derived from base. A leaf
// changed on exactly one side is taken from that side. A leaf changed on
// both sides to different values is a conflict; merged carries the dest
// value at that leaf and the conflict is reported for external
// resolution.
func ThreeWayMerge(base, dest, source Value) (Value, []Conflict) {
	baseLeaves := flattenRoot(base)
	destLeaves := flattenRoot(dest)
	sourceLeaves := flattenRoot(source)

	merged := make(map[string]leaf, len(destLeaves))
	for k, l := range destLeaves {
		merged[k] = l
	}

	var conflicts []Conflict

	allKeys := make(map[string]bool, len(baseLeaves)+len(destLeaves)+len(sourceLeaves))
	for k := range baseLeaves {
		allKeys[k] = true
	}
	for k := range destLeaves {
		allKeys[k] = true
	}
	for k := range sourceLeaves {
		allKeys[k] = true
	}

	for k := range allKeys {
		bl, inBase := baseLeaves[k]
		dl, inDest := destLeaves[k]
		sl, inSource := sourceLeaves[k]

		destChanged := changedFromBase(inBase, bl, inDest, dl)
		sourceChanged := changedFromBase(inBase, bl, inSource, sl)

		switch {
		case !destChanged && !sourceChanged:
			// unchanged on both sides; dest already carries base's value
		case destChanged && !sourceChanged:
			// dest's edit already present in merged via destLeaves copy
		case !destChanged && sourceChanged:
			if inSource {
				merged[k] = sl
			} else {
				delete(merged, k)
			}
		default:
			// both changed
			if (inDest == inSource) && inDest && dl.value.Equal(sl.value) {
				// converged on the same edit, not a conflict
				continue
			}
			c := Conflict{Path: pathOf(bl, dl, sl)}
			if inDest {
				c.Destination, c.DestinationSet = dl.value, true
			}
			if inSource {
				c.Source, c.SourceSet = sl.value, true
			}
			conflicts = append(conflicts, c)
			// merged already carries dest's value (or absence) from the
			// destLeaves copy above.
		}
	}

	return unflatten(merged), conflicts
}

func changedFromBase(inBase bool, baseLeaf leaf, inOther bool, otherLeaf leaf) bool {
	if inBase != inOther {
		return true
	}
	if !inBase {
		return false
	}
	return !baseLeaf.value.Equal(otherLeaf.value)
}

func pathOf(ls ...leaf) Path {
	for _, l := range ls {
		if l.path != nil {
			return l.path
		}
	}
	return nil
}
