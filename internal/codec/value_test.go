package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"null equals null", Null(), Null(), true},
		{"int equals int", Value{Kind: KindInt, Int: 7}, Value{Kind: KindInt, Int: 7}, true},
		{"int differs", Value{Kind: KindInt, Int: 7}, Value{Kind: KindInt, Int: 8}, false},
		{"kind mismatch", Value{Kind: KindInt, Int: 0}, Null(), false},
		{
			"maps compare by content not identity",
			Value{Kind: KindMap, Map: map[string]Value{"a": {Kind: KindInt, Int: 1}}},
			Value{Kind: KindMap, Map: map[string]Value{"a": {Kind: KindInt, Int: 1}}},
			true,
		},
		{
			"arrays compare element-wise",
			Value{Kind: KindArray, Array: []Value{{Kind: KindInt, Int: 1}, {Kind: KindInt, Int: 2}}},
			Value{Kind: KindArray, Array: []Value{{Kind: KindInt, Int: 1}, {Kind: KindInt, Int: 2}}},
			true,
		},
		{
			"array order matters",
			Value{Kind: KindArray, Array: []Value{{Kind: KindInt, Int: 1}, {Kind: KindInt, Int: 2}}},
			Value{Kind: KindArray, Array: []Value{{Kind: KindInt, Int: 2}, {Kind: KindInt, Int: 1}}},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.equal, tc.a.Equal(tc.b))
		})
	}
}

func TestFromBSONToBSONRoundTrip(t *testing.T) {
	oid := bson.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	in := bson.M{
		"name":   "alice",
		"age":    int32(30),
		"active": true,
		"score":  1.5,
		"id":     oid,
		"when":   bson.NewDateTimeFromTime(now),
		"tags":   bson.A{"x", "y"},
		"nested": bson.M{"inner": int64(42)},
		"empty":  bson.A{},
	}

	v, err := FromBSON(in)
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind)

	back := v.ToBSON()
	out, ok := back.(bson.M)
	require.True(t, ok)

	require.Equal(t, "alice", out["name"])
	require.Equal(t, int64(30), out["age"])
	require.Equal(t, true, out["active"])
	require.Equal(t, 1.5, out["score"])
	require.Equal(t, oid, out["id"])

	nested, ok := out["nested"].(bson.M)
	require.True(t, ok)
	require.Equal(t, int64(42), nested["inner"])

	tags, ok := out["tags"].([]any)
	require.True(t, ok)
	require.Equal(t, []any{"x", "y"}, tags)
}

func TestFromBSONRejectsUnknownType(t *testing.T) {
	_, err := FromBSON(struct{ X int }{X: 1})
	require.Error(t, err)
}
