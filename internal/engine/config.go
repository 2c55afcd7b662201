// Package engine implements the versioning operations a tracked collection
// supports: init, register, checkout, branching, diffing, stashing, and the
// queries (log, status, branches) that inspect them. It wires together the
// auxiliary stores, the cross-process lock, the change listener, and the
// log/delta tree machinery into one handle per tracked collection.
package engine

import (
	gotime "time"

	"github.com/mongovc/mongovc/internal/lock"
)

// Config bounds the engine's cross-process lock retries, the change
// listener's fence wait, and the in-process delta cache size.
type Config struct {
	Lock           lock.Config
	FenceTimeout   gotime.Duration
	DeltaCacheSize int
	CheckoutFanout int
}

// DefaultConfig mirrors the teacher's habit of giving every configurable
// component a ready-to-use default tuned for a single mongod deployment.
func DefaultConfig() Config {
	return Config{
		Lock:           lock.DefaultConfig(),
		FenceTimeout:   10 * gotime.Second,
		DeltaCacheSize: 4096,
		CheckoutFanout: 8,
	}
}
