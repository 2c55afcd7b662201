// Package resolver invokes an external three-way merge tool to resolve one
// conflicted document, behind the black-box boundary
// resolver(destination, source, merged) -> merged | failure: the engine
// never inspects how a conflict gets resolved, only whether the external
// tool produced a document or declined to.
package resolver

import (
	"context"

	"github.com/mongovc/mongovc/internal/codec"
)

// Resolver resolves one document's unresolved three-way-merge conflict,
// given the version on each side and the codec's best-effort merge (which
// already carries the destination's value at every conflicted leaf). It
// returns the caller's final document, or an error if resolution did not
// complete (the tool exited non-zero, or was closed without saving).
type Resolver interface {
	Resolve(ctx context.Context, destination, source, merged codec.Value) (codec.Value, error)
}
