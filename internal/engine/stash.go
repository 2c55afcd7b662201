package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/store"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

// Stash sets aside every pending change, reverting the target collection to
// its state as of the checked-out version, so the working tree is clean
// without discarding the edits outright. A collection can hold only one
// stash at a time; a second Stash call fails until the first is applied or
// discarded.
func (e *Engine) Stash(ctx context.Context) error {
	return e.withLock(ctx, true, func() error {
		if err := e.fence(ctx); err != nil {
			return err
		}
		meta, err := e.requireMetadata(ctx)
		if err != nil {
			return err
		}
		if meta.HasStash {
			return vcerrors.ErrUncommittedChanges
		}

		modifiedList, err := e.st.Modified.All(ctx)
		if err != nil {
			return err
		}
		if len(modifiedList) == 0 {
			return nil
		}

		for _, m := range modifiedList {
			idVal, err := codec.DocumentKeyToValue(m.DocumentID)
			if err != nil {
				return err
			}
			rawID := idVal.ToBSON()

			if m.Op != store.OpDelete {
				doc, err := rawDocument(ctx, e.st.Target, rawID)
				if err != nil {
					return err
				}
				if doc != nil {
					if err := e.st.Stash.PutDoc(ctx, doc); err != nil {
						return err
					}
				}
			}
			if err := e.st.Stash.PutModified(ctx, m.DocumentID, m.Op); err != nil {
				return err
			}

			if err := e.revertToReplica(ctx, rawID); err != nil {
				return err
			}
		}

		if err := e.st.Modified.Clear(ctx); err != nil {
			return err
		}
		if err := e.st.Metadata.Update(ctx, bson.M{"has_stash": true, "changed": false}); err != nil {
			return err
		}
		return nil
	})
}

// StashApply restores the stashed changes onto the target collection,
// re-tracks them as pending, and drops the stash.
func (e *Engine) StashApply(ctx context.Context) error {
	return e.withLock(ctx, true, func() error {
		meta, err := e.requireMetadata(ctx)
		if err != nil {
			return err
		}
		if !meta.HasStash {
			return nil
		}

		docs, err := e.st.Stash.AllDocs(ctx)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if _, err := e.st.Target.ReplaceOne(ctx, bson.M{"_id": doc["_id"]}, doc, replaceUpsert()); err != nil {
				return err
			}
		}

		modifiedList, err := e.st.Stash.AllModified(ctx)
		if err != nil {
			return err
		}
		for _, m := range modifiedList {
			if m.Op == store.OpDelete {
				idVal, err := codec.DocumentKeyToValue(m.DocumentID)
				if err != nil {
					return err
				}
				if _, err := e.st.Target.DeleteOne(ctx, bson.M{"_id": idVal.ToBSON()}); err != nil {
					return err
				}
			}
			if err := e.st.Modified.Upsert(ctx, m.DocumentID, m.Op); err != nil {
				return err
			}
		}

		if err := e.st.Stash.Clear(ctx); err != nil {
			return err
		}
		return e.st.Metadata.Update(ctx, bson.M{"changed": len(modifiedList) > 0, "has_stash": false})
	})
}

// StashDiscard drops the stash without applying it.
func (e *Engine) StashDiscard(ctx context.Context) error {
	return e.withLock(ctx, true, func() error {
		if err := e.st.Stash.Clear(ctx); err != nil {
			return err
		}
		return e.st.Metadata.Update(ctx, bson.M{"has_stash": false})
	})
}

// DiscardChanges reverts every pending change, restoring the target
// collection to its state as of the checked-out version, without keeping a
// stash to restore later.
func (e *Engine) DiscardChanges(ctx context.Context) error {
	return e.withLock(ctx, true, func() error {
		if err := e.fence(ctx); err != nil {
			return err
		}
		modifiedList, err := e.st.Modified.All(ctx)
		if err != nil {
			return err
		}
		for _, m := range modifiedList {
			idVal, err := codec.DocumentKeyToValue(m.DocumentID)
			if err != nil {
				return err
			}
			if err := e.revertToReplica(ctx, idVal.ToBSON()); err != nil {
				return err
			}
		}
		if err := e.st.Modified.Clear(ctx); err != nil {
			return err
		}
		return e.st.Metadata.Update(ctx, bson.M{"changed": false})
	})
}

// revertToReplica overwrites the target collection's document at rawID
// with its replica snapshot, or deletes it if the replica has none.
func (e *Engine) revertToReplica(ctx context.Context, rawID any) error {
	doc, err := e.st.Replica.Get(ctx, rawID)
	if err != nil {
		return err
	}
	if doc == nil {
		_, err := e.st.Target.DeleteOne(ctx, bson.M{"_id": rawID})
		return err
	}
	_, err = e.st.Target.ReplaceOne(ctx, bson.M{"_id": rawID}, doc, replaceUpsert())
	return err
}
