package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongovc/mongovc/internal/codec"
)

func TestValueJSONRendersMap(t *testing.T) {
	v := codec.Value{Kind: codec.KindMap, Map: map[string]codec.Value{
		"name": {Kind: codec.KindString, Str: "alice"},
		"age":  {Kind: codec.KindInt, Int: 30},
	}}

	out, err := valueJSON(v)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"alice"`)
	assert.Contains(t, out, `"age":30`)
}

func TestNewTableWriterIsBorderless(t *testing.T) {
	tw := newTableWriter()
	opts := tw.Style().Options
	assert.False(t, opts.DrawBorder)
	assert.False(t, opts.SeparateColumns)
	assert.False(t, opts.SeparateRows)
}
