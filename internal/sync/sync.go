// Package sync implements push, pull and conflict resolution between two
// versioning engines tracking the same logical collection: a local handle
// and a remote one, almost always dialed against two different MongoDB
// deployments. It never touches the target or replica collections of the
// remote side; a push only ever advances the remote's log, deltas and
// branch pointer, the same "bare repository" split git draws between a
// working tree and a remote it pushes to.
package sync

import (
	"context"

	"github.com/mongovc/mongovc/internal/engine"
)

// Syncer bundles a local and a remote engine handle for push/pull.
type Syncer struct {
	local  *engine.Engine
	remote *engine.Engine
}

// New returns a Syncer that moves history between local and remote.
func New(local, remote *engine.Engine) *Syncer {
	return &Syncer{local: local, remote: remote}
}

// withBothLocked holds both engines' cross-process locks for the duration
// of fn, always in ascending Identity() order, so two processes syncing the
// same pair of collections in opposite directions can never deadlock each
// other over the two locks.
func (s *Syncer) withBothLocked(ctx context.Context, mutates bool, fn func() error) error {
	first, second := s.local, s.remote
	if s.remote.Identity() < s.local.Identity() {
		first, second = s.remote, s.local
	}
	return first.WithLock(ctx, mutates, func() error {
		return second.WithLock(ctx, mutates, func() error {
			return fn()
		})
	})
}
