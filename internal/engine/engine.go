package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/mongovc/mongovc/internal/lock"
	"github.com/mongovc/mongovc/internal/logtree"
	vclistener "github.com/mongovc/mongovc/internal/listener"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
	"github.com/mongovc/mongovc/pkg/cache"
	"github.com/mongovc/mongovc/server/backend/background"
	"github.com/mongovc/mongovc/server/logging"
)

// Engine is one versioned-collection handle: an opened store, its
// cross-process lock, its change listener, and the in-process log tree and
// delta caches the lock's epoch invalidates when another process mutates
// state while this one doesn't hold the lock.
type Engine struct {
	st      *store.Store
	lockMgr *lock.Manager
	lst     *vclistener.Listener
	bg      *background.Background
	conf    Config
	logger  logging.Logger

	mu         sync.Mutex
	tree       *logtree.Tree
	deltaCache *cache.LRUWithStats[string, []*store.DeltaRecord]

	lifecycleMu sync.Mutex
	refs        int
	started     bool
}

// Open dials the store for targetCollection and returns an Engine ready to
// run versioning operations against it. It does not start the change
// listener; call Start for that once the caller is ready to track writes.
func Open(ctx context.Context, storeConf *store.Config, targetCollection string, conf Config) (*Engine, error) {
	st, err := store.Open(ctx, storeConf, targetCollection)
	if err != nil {
		return nil, err
	}
	deltaCache, err := cache.NewLRUWithStats[string, []*store.DeltaRecord](conf.DeltaCacheSize, "engine-deltas")
	if err != nil {
		return nil, fmt.Errorf("create delta cache: %w", err)
	}

	bg := background.New()
	e := &Engine{
		st:         st,
		lockMgr:    lock.NewManager(st.LockRecords, targetCollection, conf.Lock),
		lst:        vclistener.New(st.Target, st.Modified, st.Metadata, bg),
		bg:         bg,
		conf:       conf,
		logger:     logging.New("engine"),
		deltaCache: deltaCache,
		refs:       1,
	}
	return e, nil
}

// Acquire registers one more owner of this Engine, so a matching number of
// Close calls is required before it actually disconnects. Exported for
// internal/enginecache, which hands out the same Engine to every caller
// addressing the same (host, database, target collection) within a
// process instead of dialing it again.
func (e *Engine) Acquire() {
	e.lifecycleMu.Lock()
	e.refs++
	e.lifecycleMu.Unlock()
}

// Start begins consuming the target collection's change stream. A no-op
// if already started, so a shared Engine handed out twice by
// internal/enginecache doesn't attach a second change-stream consumer.
func (e *Engine) Start() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.lst.Start()
}

// Close releases one owner's claim on this Engine. Only once every Acquire
// (and the initial Open) has a matching Close does it stop the change
// listener's background goroutine and disconnect the underlying mongo
// client.
func (e *Engine) Close(ctx context.Context) error {
	e.lifecycleMu.Lock()
	e.refs--
	remaining := e.refs
	e.lifecycleMu.Unlock()
	if remaining > 0 {
		return nil
	}
	e.lst.Stop()
	e.bg.Close()
	return e.st.Close(ctx)
}

func (e *Engine) fence(ctx context.Context) error {
	return vclistener.Fence(ctx, e.st.Target, e.st.Modified, e.conf.FenceTimeout)
}

// Store exposes the underlying typed stores for callers (the sync engine,
// the CLI's status command) that need lower-level access than an engine
// operation provides.
func (e *Engine) Store() *store.Store {
	return e.st
}

// Identity returns this engine's (host, database, target collection)
// identity, the key the sync engine orders lock acquisition by.
func (e *Engine) Identity() string {
	return e.st.Identity()
}

// WithLock runs fn while holding this engine's cross-process lock,
// invalidating the in-process log tree and delta caches first if another
// process mutated state since this one last held it. Exported for the sync
// engine, which must hold both sides' locks, in a fixed order, for the
// duration of a push or pull.
func (e *Engine) WithLock(ctx context.Context, mutates bool, fn func() error) error {
	return e.withLock(ctx, mutates, fn)
}

func (e *Engine) withLock(ctx context.Context, mutates bool, fn func() error) error {
	return e.lockMgr.WithLock(ctx, mutates, func(staleCache bool) error {
		if staleCache {
			e.invalidateCache()
		}
		return fn()
	})
}

// InvalidateCache drops the cached log tree and delta cache, exported for
// the sync engine after it writes log/delta records directly into the
// store, bypassing the operations that would normally trigger this.
func (e *Engine) InvalidateCache() {
	e.invalidateCache()
}

func (e *Engine) invalidateCache() {
	e.mu.Lock()
	e.tree = nil
	e.mu.Unlock()
	e.deltaCache.Purge()
}

// logTree returns the cached log tree, rebuilding it from the `log`
// collection if the cache is empty or was invalidated.
func (e *Engine) logTree(ctx context.Context) (*logtree.Tree, error) {
	e.mu.Lock()
	if e.tree != nil {
		t := e.tree
		e.mu.Unlock()
		return t, nil
	}
	e.mu.Unlock()

	entries, err := e.st.Log.All(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := logtree.Build(entries)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.tree = tree
	e.mu.Unlock()
	return tree, nil
}

// LogTree returns the cached log tree, exported for the sync engine's
// ancestry checks between a local and remote branch tip.
func (e *Engine) LogTree(ctx context.Context) (*logtree.Tree, error) {
	return e.logTree(ctx)
}

// DeltasFor returns (and caches) every delta record ever recorded for
// documentID, exported for the sync engine's three-way merge path.
func (e *Engine) DeltasFor(ctx context.Context, documentID string) ([]*store.DeltaRecord, error) {
	return e.deltasFor(ctx, documentID)
}

func (e *Engine) deltasFor(ctx context.Context, documentID string) ([]*store.DeltaRecord, error) {
	if cached, ok := e.deltaCache.Get(documentID); ok {
		return cached, nil
	}
	records, err := e.st.Deltas.AllForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	e.deltaCache.Add(documentID, records)
	return records, nil
}

// requireMetadata loads the metadata singleton and fails with
// ErrNotInitialized if init hasn't run.
func (e *Engine) requireMetadata(ctx context.Context) (*store.Metadata, error) {
	meta, err := e.st.Metadata.Get(ctx)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, vcerrors.ErrNotInitialized
	}
	return meta, nil
}
