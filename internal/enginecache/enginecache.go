// Package enginecache keeps at most one open *engine.Engine per (host,
// database, target collection) within a process, so a single invocation
// that addresses the same tracked collection twice - push or pull with a
// remote that happens to resolve to the same deployment and collection as
// the local side - reuses one lock manager and listener instead of two.
// Two independent lock.Manager instances racing the same __vc_lock record
// under different holder ids can never satisfy each other's TryAcquire,
// so without this, that edge case would deadlock until the lock's retry
// timeout rather than simply re-entering.
package enginecache

import (
	"github.com/mongovc/mongovc/internal/engine"
	"github.com/mongovc/mongovc/pkg/cmap"
)

// Cache maps a store identity (the same "uri/database/target" string
// engine.Engine.Identity returns) to the engine instance opened for it.
type Cache struct {
	engines *cmap.Map[string, *engine.Engine]
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{engines: cmap.New[string, *engine.Engine]()}
}

// GetOrOpen returns the cached engine for key if one exists, Acquiring an
// extra owner's claim on it first; otherwise it calls open, caches the
// result, and returns it. Either way the caller owns exactly one Close.
func (c *Cache) GetOrOpen(key string, open func() (*engine.Engine, error)) (*engine.Engine, error) {
	var err error
	res := c.engines.Upsert(key, func(value *engine.Engine, exists bool) *engine.Engine {
		if exists {
			value.Acquire()
			return value
		}
		opened, openErr := open()
		err = openErr
		return opened
	})
	if err != nil {
		c.engines.Delete(key, func(value *engine.Engine, exists bool) bool {
			return exists && value == nil
		})
		return nil, err
	}
	return res, nil
}
