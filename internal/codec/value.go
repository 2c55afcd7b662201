// Package codec implements the canonical tagged value type and the
// invertible structural delta codec documents are diffed, applied,
// composed and three-way merged through.
package codec

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Kind tags the variant held by a Value.
type Kind byte

// The tagged value variants, per the dynamic-document-shape design note:
// null, bool, int, float, string, bytes, array, map, oid, timestamp.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindArray
	KindMap
	KindOID
	KindTimestamp
)

// Value is the canonical, database-agnostic representation of a document
// or a fragment of one. Exactly one of the typed fields is meaningful,
// selected by Kind.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Bytes []byte
	Array []Value
	Map   map[string]Value
	OID   bson.ObjectID
	Time  time.Time
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// EmptyMap returns the canonical "document does not exist" sentinel: an
// empty map rather than Null, so flatten treats a document's absence as a
// leaf at the same path any of its fields would occupy, keeping insert and
// delete transitions visible to Diff instead of colliding at the root.
func EmptyMap() Value { return Value{Kind: KindMap, Map: map[string]Value{}} }

// Equal reports whether two values are structurally identical.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindString:
		return v.Str == other.Str
	case KindBytes:
		if len(v.Bytes) != len(other.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != other.Bytes[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(other.Map) {
			return false
		}
		for k, mv := range v.Map {
			ov, ok := other.Map[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	case KindOID:
		return v.OID == other.OID
	case KindTimestamp:
		return v.Time.Equal(other.Time)
	default:
		return false
	}
}

// FromBSON converts a decoded BSON value (as produced by bson.Unmarshal
// into an `any`, or by a driver cursor Decode into bson.M/bson.A) into a
// Value. The other Go numeric widths and document shapes the driver can
// produce (int32, int, float32, bson.D, []any) map to their nearest tagged
// kind; any other type is reported as an error.
func FromBSON(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case int32:
		return Value{Kind: KindInt, Int: int64(t)}, nil
	case int64:
		return Value{Kind: KindInt, Int: t}, nil
	case int:
		return Value{Kind: KindInt, Int: int64(t)}, nil
	case float64:
		return Value{Kind: KindFloat, Float: t}, nil
	case float32:
		return Value{Kind: KindFloat, Float: float64(t)}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case []byte:
		return Value{Kind: KindBytes, Bytes: t}, nil
	case bson.Binary:
		return Value{Kind: KindBytes, Bytes: t.Data}, nil
	case bson.ObjectID:
		return Value{Kind: KindOID, OID: t}, nil
	case bson.DateTime:
		return Value{Kind: KindTimestamp, Time: t.Time()}, nil
	case time.Time:
		return Value{Kind: KindTimestamp, Time: t}, nil
	case bson.M:
		return fromMap(map[string]any(t))
	case map[string]any:
		return fromMap(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return fromMap(m)
	case bson.A:
		return fromSlice(t)
	case []any:
		return fromSlice(t)
	default:
		return Value{}, fmt.Errorf("codec: unsupported bson type %T", in)
	}
}

func fromMap(m map[string]any) (Value, error) {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		cv, err := FromBSON(v)
		if err != nil {
			return Value{}, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = cv
	}
	return Value{Kind: KindMap, Map: out}, nil
}

func fromSlice(s []any) (Value, error) {
	out := make([]Value, len(s))
	for i, v := range s {
		cv, err := FromBSON(v)
		if err != nil {
			return Value{}, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = cv
	}
	return Value{Kind: KindArray, Array: out}, nil
}

// ToBSON converts a Value back into a plain Go value the mongo driver can
// marshal directly (bson.M for maps, []any for arrays).
func (v Value) ToBSON() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindBytes:
		return v.Bytes
	case KindOID:
		return v.OID
	case KindTimestamp:
		return bson.NewDateTimeFromTime(v.Time)
	case KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.ToBSON()
		}
		return out
	case KindMap:
		out := bson.M{}
		for k, e := range v.Map {
			out[k] = e.ToBSON()
		}
		return out
	default:
		return nil
	}
}
