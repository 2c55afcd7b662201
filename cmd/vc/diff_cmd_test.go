package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mongovc/mongovc/internal/codec"
)

func TestOpKindLabel(t *testing.T) {
	assert.Equal(t, "delete", opKindLabel(codec.OpDelete))
	assert.Equal(t, "set", opKindLabel(codec.OpSet))
}

func TestPathLabelJoinsKeysAndIndices(t *testing.T) {
	p := codec.Path{
		{Key: "items", IsIndex: false},
		{Index: 2, IsIndex: true},
		{Key: "name", IsIndex: false},
	}
	assert.Equal(t, "items.2.name", pathLabel(p))
}

func TestPathLabelEmptyPath(t *testing.T) {
	assert.Equal(t, "", pathLabel(codec.Path{}))
}
