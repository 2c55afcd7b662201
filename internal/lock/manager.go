// Package lock implements the cross-process re-entrant lock that guards a
// tracked collection's auxiliary stores, plus the epoch bookkeeping the
// engine's in-process caches use to know when they have gone stale.
package lock

import (
	"context"
	"sync"
	gotime "time"

	"github.com/rs/xid"

	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
	"github.com/mongovc/mongovc/server/logging"
)

// Config bounds how long a Manager retries before giving up on Lock.
type Config struct {
	BaseInterval gotime.Duration
	MaxInterval  gotime.Duration
	Timeout      gotime.Duration
}

// DefaultConfig mirrors the timings the teacher's webhook retry loop uses.
func DefaultConfig() Config {
	return Config{
		BaseInterval: 20 * gotime.Millisecond,
		MaxInterval:  2 * gotime.Second,
		Timeout:      10 * gotime.Second,
	}
}

// Manager holds the cross-process lock for one tracked collection. One
// Manager is held per engine instance; re-entrancy within that instance is
// tracked locally so nested Lock/Unlock pairs from the same goroutine don't
// round-trip to the database.
type Manager struct {
	records        *store.LockStore
	collectionName string
	holderID       string
	conf           Config
	logger         logging.Logger

	mu         sync.Mutex
	localDepth int
	lastEpoch  int64
	epochSeen  bool
}

// NewManager creates a Manager for one tracked collection, minting a unique
// holder id the way the teacher mints process/session identifiers.
func NewManager(records *store.LockStore, collectionName string, conf Config) *Manager {
	return &Manager{
		records:        records,
		collectionName: collectionName,
		holderID:       xid.New().String(),
		conf:           conf,
		logger:         logging.New("lock"),
	}
}

// HolderID returns this manager's unique holder identity.
func (m *Manager) HolderID() string {
	return m.holderID
}

// Lock acquires the cross-process lock, retrying with exponential backoff
// until it succeeds or conf.Timeout elapses, in which case it fails with
// ErrLockTimeout. It reports whether the observed epoch changed since this
// process last released the lock, telling the caller whether its cached log
// tree and delta trees must be invalidated before use.
func (m *Manager) Lock(ctx context.Context) (staleCache bool, err error) {
	m.mu.Lock()
	if m.localDepth > 0 {
		m.localDepth++
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()

	if err := m.records.EnsureRecord(ctx, m.collectionName); err != nil {
		return false, err
	}

	deadline := gotime.Now().Add(m.conf.Timeout)
	var attempt uint64
	for {
		acquired, _, epoch, err := m.records.TryAcquire(ctx, m.collectionName, m.holderID)
		if err != nil {
			return false, err
		}
		if acquired {
			m.mu.Lock()
			m.localDepth = 1
			stale := !m.epochSeen || epoch != m.lastEpoch
			m.lastEpoch = epoch
			m.epochSeen = true
			m.mu.Unlock()
			return stale, nil
		}

		if gotime.Now().After(deadline) {
			return false, vcerrors.ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-gotime.After(waitInterval(attempt, m.conf.BaseInterval, m.conf.MaxInterval)):
		}
		attempt++
	}
}

// Unlock releases one level of re-entrancy. mutated must report whether
// this holder's critical section changed persistent state; only a
// state-mutating final release advances the epoch other processes observe.
func (m *Manager) Unlock(ctx context.Context, mutated bool) error {
	m.mu.Lock()
	if m.localDepth == 0 {
		m.mu.Unlock()
		return vcerrors.ErrLockLost
	}
	m.localDepth--
	final := m.localDepth == 0
	m.mu.Unlock()

	if !final {
		return nil
	}

	epoch, err := m.records.Release(ctx, m.collectionName, m.holderID, mutated)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.lastEpoch = epoch
	m.mu.Unlock()
	return nil
}

// WithLock runs fn while holding the lock, reporting whether the cache was
// stale on entry, and releases it afterward. The release counts as a
// mutation only when mutates is true and fn returned a nil error,
// mirroring how the teacher's LockerManager
// wraps critical sections with defer-based release.
func (m *Manager) WithLock(ctx context.Context, mutates bool, fn func(staleCache bool) error) error {
	stale, err := m.Lock(ctx)
	if err != nil {
		return err
	}
	fnErr := fn(stale)
	if unlockErr := m.Unlock(ctx, mutates && fnErr == nil); unlockErr != nil {
		if fnErr != nil {
			return fnErr
		}
		return unlockErr
	}
	return fnErr
}
