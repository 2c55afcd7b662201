package codec

import (
	"bytes"
	"encoding/hex"
)

// DocumentKey returns a stable, comparable string key for a document's _id
// value, used to index the modified/delta/replica/stash/conflict stores by
// document identity regardless of the concrete _id type (ObjectID, string,
// int, ...). It is the hex encoding of the value's binary wire form, so two
// equal _id values of the same type always produce the same key.
func DocumentKey(id Value) (string, error) {
	var buf bytes.Buffer
	if err := EncodeValue(&buf, id); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// DocumentKeyToValue inverts DocumentKey, recovering the original _id value
// from its hex-encoded wire form. Stores that only keep the key string (the
// modified and deltas collections) use this to recover a raw _id to query
// the target and replica collections with.
func DocumentKeyToValue(key string) (Value, error) {
	raw, err := hex.DecodeString(key)
	if err != nil {
		return Value{}, err
	}
	return DecodeValue(bytes.NewReader(raw))
}
