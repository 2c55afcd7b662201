package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strVal(s string) Value { return Value{Kind: KindString, Str: s} }
func intVal(i int64) Value  { return Value{Kind: KindInt, Int: i} }

func docA() Value {
	return Value{Kind: KindMap, Map: map[string]Value{
		"name": strVal("alice"),
		"age":  intVal(30),
		"tags": {Kind: KindArray, Array: []Value{strVal("a"), strVal("b")}},
	}}
}

func docB() Value {
	return Value{Kind: KindMap, Map: map[string]Value{
		"name":  strVal("alice"),
		"age":   intVal(31),
		"email": strVal("alice@example.com"),
		"tags":  {Kind: KindArray, Array: []Value{strVal("a"), strVal("b"), strVal("c")}},
	}}
}

func TestDiffApplyForwardRoundTrip(t *testing.T) {
	a, b := docA(), docB()
	d := Diff(a, b)

	got, err := Apply(a, d, Forward)
	require.NoError(t, err)
	require.True(t, got.Equal(b), "forward apply should reproduce b")
}

func TestDiffApplyBackwardRoundTrip(t *testing.T) {
	a, b := docA(), docB()
	d := Diff(a, b)

	got, err := Apply(b, d, Backward)
	require.NoError(t, err)
	require.True(t, got.Equal(a), "backward apply should reproduce a")
}

func TestDiffIdenticalDocsIsIdentity(t *testing.T) {
	a := docA()
	d := Diff(a, a)
	require.True(t, d.IsIdentity())
}

func TestIdentityComposeIsUnit(t *testing.T) {
	a, b := docA(), docB()
	d := Diff(a, b)

	left := Compose(Identity(), d)
	right := Compose(d, Identity())

	gotLeft, err := Apply(a, left, Forward)
	require.NoError(t, err)
	require.True(t, gotLeft.Equal(b))

	gotRight, err := Apply(a, right, Forward)
	require.NoError(t, err)
	require.True(t, gotRight.Equal(b))
}

func TestComposeChainsForwardDeltas(t *testing.T) {
	a := docA()
	mid := docB()
	final := Value{Kind: KindMap, Map: map[string]Value{
		"name":  strVal("bob"),
		"age":   intVal(31),
		"email": strVal("alice@example.com"),
		"tags":  {Kind: KindArray, Array: []Value{strVal("a"), strVal("b"), strVal("c")}},
	}}

	d1 := Diff(a, mid)
	d2 := Diff(mid, final)
	combined := Compose(d1, d2)

	gotForward, err := Apply(a, combined, Forward)
	require.NoError(t, err)
	require.True(t, gotForward.Equal(final))

	gotBackward, err := Apply(final, combined, Backward)
	require.NoError(t, err)
	require.True(t, gotBackward.Equal(a))
}

func TestApplyEmptyContainerRoundTrips(t *testing.T) {
	a := Value{Kind: KindMap, Map: map[string]Value{
		"list": {Kind: KindArray, Array: []Value{}},
		"obj":  {Kind: KindMap, Map: map[string]Value{}},
	}}
	b := Value{Kind: KindMap, Map: map[string]Value{
		"list": {Kind: KindArray, Array: []Value{intVal(1)}},
		"obj":  {Kind: KindMap, Map: map[string]Value{}},
	}}

	d := Diff(a, b)
	got, err := Apply(a, d, Forward)
	require.NoError(t, err)
	require.True(t, got.Equal(b))

	back, err := Apply(b, d, Backward)
	require.NoError(t, err)
	require.True(t, back.Equal(a))
}

func TestThreeWayMergeNonConflicting(t *testing.T) {
	base := Value{Kind: KindMap, Map: map[string]Value{
		"a": intVal(1),
		"b": intVal(2),
	}}
	dest := Value{Kind: KindMap, Map: map[string]Value{
		"a": intVal(10),
		"b": intVal(2),
	}}
	source := Value{Kind: KindMap, Map: map[string]Value{
		"a": intVal(1),
		"b": intVal(20),
	}}

	merged, conflicts := ThreeWayMerge(base, dest, source)
	require.Empty(t, conflicts)

	flat := flattenRoot(merged)
	require.True(t, flat[Path{{Key: "a"}}.key()].value.Equal(intVal(10)))
	require.True(t, flat[Path{{Key: "b"}}.key()].value.Equal(intVal(20)))
}

func TestThreeWayMergeConflictKeepsDestInMerged(t *testing.T) {
	base := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(1)}}
	dest := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(10)}}
	source := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(20)}}

	merged, conflicts := ThreeWayMerge(base, dest, source)
	require.Len(t, conflicts, 1)
	require.Equal(t, intVal(10).Int, conflicts[0].Destination.Int)
	require.Equal(t, intVal(20).Int, conflicts[0].Source.Int)

	flat := flattenRoot(merged)
	require.True(t, flat[Path{{Key: "a"}}.key()].value.Equal(intVal(10)))
}

func TestThreeWayMergeConvergedEditIsNotConflict(t *testing.T) {
	base := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(1)}}
	dest := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(9)}}
	source := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(9)}}

	_, conflicts := ThreeWayMerge(base, dest, source)
	require.Empty(t, conflicts)
}

func TestThreeWayMergeDeleteOnOneSide(t *testing.T) {
	base := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(1), "b": intVal(2)}}
	dest := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(1), "b": intVal(2)}}
	source := Value{Kind: KindMap, Map: map[string]Value{"a": intVal(1)}}

	merged, conflicts := ThreeWayMerge(base, dest, source)
	require.Empty(t, conflicts)
	flat := flattenRoot(merged)
	_, ok := flat[Path{{Key: "b"}}.key()]
	require.False(t, ok, "b should be removed since only source deleted it")
}
