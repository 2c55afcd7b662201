package codec

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/pkg/binary"
)

// wireKind names Kind in its role as the on-disk tag. It is an alias, so the
// tag byte written is the in-memory enum value itself.
type wireKind = Kind

// EncodeValue serializes v into the fixed binary format stored in delta
// op payloads.
func EncodeValue(buf *bytes.Buffer, v Value) error {
	if err := binary.WriteByte(buf, byte(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return binary.WriteBool(buf, v.Bool)
	case KindInt:
		return binary.WriteInt64(buf, v.Int)
	case KindFloat:
		return binary.WriteFloat64(buf, v.Float)
	case KindString:
		return binary.WriteString(buf, v.Str)
	case KindBytes:
		return binary.WriteBytes(buf, v.Bytes)
	case KindOID:
		oid := v.OID
		return binary.WriteBytes(buf, oid[:])
	case KindTimestamp:
		return binary.WriteInt64(buf, v.Time.UnixNano())
	case KindArray:
		if err := binary.WriteUint32(buf, uint32(len(v.Array))); err != nil {
			return err
		}
		for _, e := range v.Array {
			if err := EncodeValue(buf, e); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := binary.WriteUint32(buf, uint32(len(v.Map))); err != nil {
			return err
		}
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := binary.WriteString(buf, k); err != nil {
				return err
			}
			if err := EncodeValue(buf, v.Map[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("codec: unknown value kind %d", v.Kind)
	}
}

// DecodeValue reads one Value from r, the inverse of EncodeValue.
func DecodeValue(r *bytes.Reader) (Value, error) {
	kindByte, err := binary.ReadByte(r)
	if err != nil {
		return Value{}, err
	}
	kind := wireKind(kindByte)
	switch kind {
	case KindNull:
		return Null(), nil
	case KindBool:
		b, err := binary.ReadBool(r)
		return Value{Kind: KindBool, Bool: b}, err
	case KindInt:
		i, err := binary.ReadInt64(r)
		return Value{Kind: KindInt, Int: i}, err
	case KindFloat:
		f, err := binary.ReadFloat64(r)
		return Value{Kind: KindFloat, Float: f}, err
	case KindString:
		s, err := binary.ReadString(r)
		return Value{Kind: KindString, Str: s}, err
	case KindBytes:
		b, err := binary.ReadBytes(r)
		return Value{Kind: KindBytes, Bytes: b}, err
	case KindOID:
		b, err := binary.ReadBytes(r)
		if err != nil {
			return Value{}, err
		}
		if len(b) != 12 {
			return Value{}, fmt.Errorf("codec: malformed object id, got %d bytes", len(b))
		}
		var raw [12]byte
		copy(raw[:], b)
		return Value{Kind: KindOID, OID: bson.ObjectID(raw)}, nil
	case KindTimestamp:
		nanos, err := binary.ReadInt64(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindTimestamp, Time: time.Unix(0, nanos).UTC()}, nil
	case KindArray:
		n, err := binary.ReadUint32(r)
		if err != nil {
			return Value{}, err
		}
		out := make([]Value, n)
		for i := range out {
			ev, err := DecodeValue(r)
			if err != nil {
				return Value{}, fmt.Errorf("array index %d: %w", i, err)
			}
			out[i] = ev
		}
		return Value{Kind: KindArray, Array: out}, nil
	case KindMap:
		n, err := binary.ReadUint32(r)
		if err != nil {
			return Value{}, err
		}
		out := make(map[string]Value, n)
		for i := uint32(0); i < n; i++ {
			k, err := binary.ReadString(r)
			if err != nil {
				return Value{}, err
			}
			ev, err := DecodeValue(r)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = ev
		}
		return Value{Kind: KindMap, Map: out}, nil
	default:
		return Value{}, fmt.Errorf("codec: unknown wire kind %d", kindByte)
	}
}

func encodePath(buf *bytes.Buffer, p Path) error {
	if err := binary.WriteUint32(buf, uint32(len(p))); err != nil {
		return err
	}
	for _, seg := range p {
		if err := binary.WriteBool(buf, seg.IsIndex); err != nil {
			return err
		}
		if seg.IsIndex {
			if err := binary.WriteUint32(buf, uint32(seg.Index)); err != nil {
				return err
			}
			continue
		}
		if err := binary.WriteString(buf, seg.Key); err != nil {
			return err
		}
	}
	return nil
}

func decodePath(r *bytes.Reader) (Path, error) {
	n, err := binary.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	out := make(Path, n)
	for i := range out {
		isIndex, err := binary.ReadBool(r)
		if err != nil {
			return nil, err
		}
		if isIndex {
			idx, err := binary.ReadUint32(r)
			if err != nil {
				return nil, err
			}
			out[i] = PathSeg{Index: int(idx), IsIndex: true}
			continue
		}
		key, err := binary.ReadString(r)
		if err != nil {
			return nil, err
		}
		out[i] = PathSeg{Key: key}
	}
	return out, nil
}

func encodeOp(buf *bytes.Buffer, op Op) error {
	if err := binary.WriteByte(buf, byte(op.Kind)); err != nil {
		return err
	}
	if err := encodePath(buf, op.Path); err != nil {
		return err
	}
	if op.Kind == OpSet {
		return EncodeValue(buf, op.Value)
	}
	return nil
}

func decodeOp(r *bytes.Reader) (Op, error) {
	kindByte, err := binary.ReadByte(r)
	if err != nil {
		return Op{}, err
	}
	path, err := decodePath(r)
	if err != nil {
		return Op{}, err
	}
	op := Op{Path: path, Kind: OpKind(kindByte)}
	if op.Kind == OpSet {
		v, err := DecodeValue(r)
		if err != nil {
			return Op{}, err
		}
		op.Value = v
	}
	return op, nil
}

func encodeOps(buf *bytes.Buffer, ops []Op) error {
	if err := binary.WriteUint32(buf, uint32(len(ops))); err != nil {
		return err
	}
	for _, op := range ops {
		if err := encodeOp(buf, op); err != nil {
			return err
		}
	}
	return nil
}

func decodeOps(r *bytes.Reader) ([]Op, error) {
	n, err := binary.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]Op, n)
	for i := range out {
		op, err := decodeOp(r)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		out[i] = op
	}
	return out, nil
}

// EncodeDelta serializes a Delta into the fixed binary format persisted in
// a delta record's forward/backward fields.
func EncodeDelta(d Delta) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeOps(&buf, d.Forward); err != nil {
		return nil, fmt.Errorf("codec: encode forward: %w", err)
	}
	if err := encodeOps(&buf, d.Backward); err != nil {
		return nil, fmt.Errorf("codec: encode backward: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDelta is the inverse of EncodeDelta.
func DecodeDelta(data []byte) (Delta, error) {
	r := bytes.NewReader(data)
	forward, err := decodeOps(r)
	if err != nil {
		return Delta{}, fmt.Errorf("codec: decode forward: %w", err)
	}
	backward, err := decodeOps(r)
	if err != nil {
		return Delta{}, fmt.Errorf("codec: decode backward: %w", err)
	}
	return Delta{Forward: forward, Backward: backward}, nil
}

// EncodeOpsHalf serializes a single op list (one side of a Delta) on its
// own, for codepaths that persist forward and backward independently.
func EncodeOpsHalf(ops []Op) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeOps(&buf, ops); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeOpsHalf is the inverse of EncodeOpsHalf.
func DecodeOpsHalf(data []byte) ([]Op, error) {
	return decodeOps(bytes.NewReader(data))
}

// EncodeValueBytes serializes a whole value on its own, for codepaths (a
// conflict's destination/source/merged snapshots) that persist a Value
// independent of any delta.
func EncodeValueBytes(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeValueBytes is the inverse of EncodeValueBytes.
func DecodeValueBytes(data []byte) (Value, error) {
	return DecodeValue(bytes.NewReader(data))
}
