// Package listener implements the change-stream consumer that keeps the
// `modified` auxiliary collection in sync with writes on the tracked
// collection, and the fence protocol versioning operations use to wait for
// it to catch up before reading `modified`/`replica`.
package listener

import (
	"context"
	"fmt"
	"strings"
	gotime "time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
	"github.com/mongovc/mongovc/server/backend/background"
	"github.com/mongovc/mongovc/server/logging"
)

// fenceDocPrefix marks the reserved document-id namespace the fence
// protocol writes sentinels into. handle lets a sentinel's insert event
// through, since Fence's poll loop needs to observe it land in modified,
// but drops its delete event so the cleanup half of the round trip never
// leaves a stray tracked entry behind for register or diff to see.
const fenceDocPrefix = "__vc_fence_"

// Listener watches the target collection for changes and coalesces them
// into the `modified` tracker, using the precedence table in coalesce.
type Listener struct {
	target   *mongo.Collection
	modified *store.ModifiedStore
	metadata *store.MetadataStore
	bg       *background.Background
	logger   logging.Logger

	stopCh chan struct{}
}

// New creates a Listener for one tracked collection. Start must be called
// to begin consuming change events.
func New(target *mongo.Collection, modified *store.ModifiedStore, metadata *store.MetadataStore, bg *background.Background) *Listener {
	return &Listener{
		target:   target,
		modified: modified,
		metadata: metadata,
		bg:       bg,
		logger:   logging.New("listener"),
		stopCh:   make(chan struct{}),
	}
}

// Start registers the listener's consume loop as a managed goroutine, so it
// starts and stops with the rest of the backend.
func (l *Listener) Start() {
	l.bg.AttachGoroutine(l.run, "change-listener")
}

// Stop signals the consume loop to exit; the resume token is already
// persisted after each consumed event. Calling Stop again is a no-op.
func (l *Listener) Stop() {
	select {
	case <-l.stopCh:
	default:
		close(l.stopCh)
	}
}

func (l *Listener) run(ctx context.Context) {
	var attempt uint64
	for {
		select {
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := l.consume(ctx); err != nil {
			l.logger.Warnf("change stream error, retrying: %v", err)
			attempt++
		} else {
			attempt = 0
		}

		select {
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		case <-gotime.After(waitInterval(attempt)):
		}
	}
}

func waitInterval(attempt uint64) gotime.Duration {
	interval := gotime.Duration(1<<attempt) * 100 * gotime.Millisecond
	const maxInterval = 10 * gotime.Second
	if interval > maxInterval || interval <= 0 {
		return maxInterval
	}
	return interval
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   bson.M `bson:"documentKey"`
}

func (l *Listener) consume(ctx context.Context) error {
	opts := options.ChangeStream().SetFullDocument(options.Default)

	meta, err := l.metadata.Get(ctx)
	if err != nil {
		return fmt.Errorf("load resume token: %w", err)
	}
	if meta != nil && len(meta.ResumeToken) > 0 {
		opts.SetResumeAfter(bson.Raw(meta.ResumeToken))
	}

	cs, err := l.target.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}
	defer cs.Close(ctx)

	for cs.Next(ctx) {
		var ev changeEvent
		if err := cs.Decode(&ev); err != nil {
			l.logger.Warnf("decode change event: %v", err)
			continue
		}
		if err := l.handle(ctx, ev); err != nil {
			l.logger.Warnf("handle change event: %v", err)
		}
		if err := l.metadata.Update(ctx, bson.M{"resume_token": []byte(cs.ResumeToken())}); err != nil {
			l.logger.Warnf("persist resume token: %v", err)
		}
	}
	return cs.Err()
}

func (l *Listener) handle(ctx context.Context, ev changeEvent) error {
	rawID, ok := ev.DocumentKey["_id"]
	if !ok {
		return nil
	}
	// Fence writes and removes its own sentinel directly, polling modified
	// itself rather than relying on handle; but the delete half of that
	// round trip isn't fenced, so its change event can arrive here after
	// Fence has already cleaned the sentinel back out of modified. Letting
	// it through would re-create a stray tracked entry for a document that
	// never really existed, which Checkout's pending-changes count would
	// then see as uncommitted work. The insert half still has to pass
	// through so Fence's own poll loop observes it.
	if s, ok := rawID.(string); ok && strings.HasPrefix(s, fenceDocPrefix) && ev.OperationType == "delete" {
		return nil
	}
	idVal, err := codec.FromBSON(rawID)
	if err != nil {
		return fmt.Errorf("decode document id: %w", err)
	}
	documentID, err := codec.DocumentKey(idVal)
	if err != nil {
		return fmt.Errorf("compute document key: %w", err)
	}

	var op store.ModifiedOp
	switch ev.OperationType {
	case "insert":
		op = store.OpInsert
	case "update", "replace":
		op = store.OpUpdate
	case "delete":
		op = store.OpDelete
	default:
		return nil
	}

	return l.coalesce(ctx, documentID, op)
}

// coalesce applies the precedence table in §4.5: a document's pending op
// can be overridden, merged away as a net no-op, or replaced outright by
// the next observed op, depending on what is already tracked.
func (l *Listener) coalesce(ctx context.Context, documentID string, op store.ModifiedOp) error {
	existing, err := l.modified.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := l.modified.Upsert(ctx, documentID, op); err != nil {
			return err
		}
		// This document has no prior tracked op, so metadata.changed may
		// still be false from the last register/checkout; every other
		// branch below only touches an already-tracked document, whose
		// first event already flipped it.
		if err := l.metadata.Update(ctx, bson.M{"changed": true}); err != nil {
			l.logger.Warnf("mark changed: %v", err)
		}
		return nil
	}

	switch {
	case existing.Op == store.OpInsert && op == store.OpDelete:
		return l.modified.Delete(ctx, documentID)
	case existing.Op == store.OpInsert && op == store.OpUpdate:
		return nil
	case existing.Op == store.OpUpdate && op == store.OpUpdate:
		return nil
	case existing.Op == store.OpUpdate && op == store.OpDelete:
		return l.modified.Upsert(ctx, documentID, store.OpDelete)
	case existing.Op == store.OpDelete && op == store.OpInsert:
		return l.modified.Upsert(ctx, documentID, store.OpUpdate)
	default:
		return l.modified.Upsert(ctx, documentID, op)
	}
}

// Fence blocks until the listener has observed and coalesced a change past
// a freshly written sentinel, converting the change stream's eventual
// consistency into a happens-before boundary for the caller. It fails with
// ErrListenerStalled if the listener hasn't caught up within timeout.
func Fence(ctx context.Context, target *mongo.Collection, modified *store.ModifiedStore, timeout gotime.Duration) error {
	sentinelID := fenceDocPrefix + xid.New().String()
	if _, err := target.InsertOne(ctx, bson.M{"_id": sentinelID}); err != nil {
		return fmt.Errorf("write fence sentinel: %w", err)
	}
	defer func() {
		_, _ = target.DeleteOne(ctx, bson.M{"_id": sentinelID})
	}()

	idVal, err := codec.FromBSON(sentinelID)
	if err != nil {
		return fmt.Errorf("encode fence sentinel id: %w", err)
	}
	documentID, err := codec.DocumentKey(idVal)
	if err != nil {
		return fmt.Errorf("compute fence sentinel key: %w", err)
	}

	deadline := gotime.Now().Add(timeout)
	const pollInterval = 15 * gotime.Millisecond
	for {
		rec, err := modified.Get(ctx, documentID)
		if err != nil {
			return fmt.Errorf("poll fence sentinel: %w", err)
		}
		if rec != nil {
			return modified.Delete(ctx, documentID)
		}
		if gotime.Now().After(deadline) {
			return vcerrors.ErrListenerStalled
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-gotime.After(pollInterval):
		}
	}
}
