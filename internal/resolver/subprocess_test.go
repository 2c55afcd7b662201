package resolver_test

import (
	"context"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/require"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/resolver"
)

func intMap(fields map[string]int64) codec.Value {
	m := make(map[string]codec.Value, len(fields))
	for k, v := range fields {
		m[k] = codec.Value{Kind: codec.KindInt, Int: v}
	}
	return codec.Value{Kind: codec.KindMap, Map: m}
}

// A one-line shell script standing in for a real merge tool: it takes the
// source file ($2, since $0 is destination and $1 is merged) and copies it
// onto the merged file, the simplest possible "take theirs" resolution, to
// exercise the three-file protocol end to end.
func TestSubprocessResolveTakesSourceViaCopy(t *testing.T) {
	r := resolver.New(resolver.Config{
		Command: "sh",
		Args:    []string{"-c", `cp "$2" "$1"`},
		Timeout: 5 * gotime.Second,
	})

	destination := intMap(map[string]int64{"a": 1})
	source := intMap(map[string]int64{"a": 2})
	merged := intMap(map[string]int64{"a": 1})

	resolved, err := r.Resolve(context.Background(), destination, source, merged)
	require.NoError(t, err)
	require.True(t, resolved.Equal(source))
}

func TestSubprocessResolveReportsNonZeroExit(t *testing.T) {
	r := resolver.New(resolver.Config{
		Command: "false",
		Timeout: 5 * gotime.Second,
	})

	v := intMap(map[string]int64{"a": 1})
	_, err := r.Resolve(context.Background(), v, v, v)
	require.Error(t, err)
}

func TestSubprocessResolveReportsMissingCommand(t *testing.T) {
	r := resolver.New(resolver.Config{
		Command: "mongovc-resolver-does-not-exist",
		Timeout: 5 * gotime.Second,
	})

	v := intMap(map[string]int64{"a": 1})
	_, err := r.Resolve(context.Background(), v, v, v)
	require.Error(t, err)
}
