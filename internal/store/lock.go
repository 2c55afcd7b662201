package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// LockStore is the typed wrapper over the single, per-database `__vc_lock`
// collection: one record per tracked target collection, guarding it with a
// re-entrant, holder-scoped compare-and-swap lock.
type LockStore struct {
	col *mongo.Collection
}

// EnsureRecord creates the unlocked lock record for a collection if absent.
func (s *LockStore) EnsureRecord(ctx context.Context, collectionName string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": collectionName}, bson.M{
		"$setOnInsert": bson.M{"locked": false, "holder_id": "", "depth": 0, "epoch": int64(0)},
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ensure lock record %s: %w", collectionName, err)
	}
	return nil
}

// TryAcquire attempts to take (or re-enter) the lock for collectionName as
// holderID. It matches a record that is either unlocked or already held by
// holderID, and atomically raises depth by one in the same command a fresh
// acquire sets locked/holder_id, so two processes racing on the same unlocked
// record can never both win. It reports the resulting lock state; acquired
// is false (with no error) when some other holder currently owns the lock.
func (s *LockStore) TryAcquire(ctx context.Context, collectionName, holderID string) (acquired bool, depth int, epoch int64, err error) {
	filter := bson.M{
		"_id": collectionName,
		"$or": []bson.M{
			{"locked": false},
			{"holder_id": holderID},
		},
	}
	pipeline := mongo.Pipeline{bson.D{{Key: "$set", Value: bson.D{
		{Key: "locked", Value: true},
		{Key: "holder_id", Value: holderID},
		{Key: "depth", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$holder_id", holderID}}},
			bson.D{{Key: "$add", Value: bson.A{"$depth", 1}}},
			1,
		}}}},
	}}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec Lock
	err = s.col.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The filter did not match an existing record (another holder
			// owns it, or a concurrent acquire created it first), so the
			// upsert's insert collided on _id; the caller retries.
			return false, 0, 0, nil
		}
		return false, 0, 0, fmt.Errorf("acquire lock %s: %w", collectionName, err)
	}
	if rec.HolderID != holderID {
		return false, 0, 0, nil
	}
	return true, rec.Depth, rec.Epoch, nil
}

// Release drops one re-entrancy level held by holderID. Once depth reaches
// zero the record unlocks and, when mutated is true, its epoch advances, the
// signal in-process
// caches use to invalidate the log tree and delta tree they memoized while
// the lock was held.
func (s *LockStore) Release(ctx context.Context, collectionName, holderID string, mutated bool) (epoch int64, err error) {
	filter := bson.M{"_id": collectionName, "holder_id": holderID}
	stillHeld := bson.D{{Key: "$gt", Value: bson.A{
		bson.D{{Key: "$subtract", Value: bson.A{"$depth", 1}}}, 0,
	}}}
	bumpEpoch := bson.A{"$epoch", 1}
	epochExpr := bson.D{{Key: "$cond", Value: bson.A{stillHeld, "$epoch", "$epoch"}}}
	if mutated {
		epochExpr = bson.D{{Key: "$cond", Value: bson.A{stillHeld, "$epoch", bson.D{{Key: "$add", Value: bumpEpoch}}}}}
	}
	pipeline := mongo.Pipeline{bson.D{{Key: "$set", Value: bson.D{
		{Key: "depth", Value: bson.D{{Key: "$subtract", Value: bson.A{"$depth", 1}}}},
		{Key: "locked", Value: stillHeld},
		{Key: "holder_id", Value: bson.D{{Key: "$cond", Value: bson.A{stillHeld, holderID, ""}}}},
		{Key: "epoch", Value: epochExpr},
	}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec Lock
	err = s.col.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return 0, fmt.Errorf("release lock %s: not held by %s", collectionName, holderID)
	}
	if err != nil {
		return 0, fmt.Errorf("release lock %s: %w", collectionName, err)
	}
	return rec.Epoch, nil
}

// RemoveRecord deletes collectionName's lock record. Callers must hold the
// lock (depth 1, about to release) before calling this, since there is no
// record left afterward for a concurrent acquirer to contend on.
func (s *LockStore) RemoveRecord(ctx context.Context, collectionName string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": collectionName}); err != nil {
		return fmt.Errorf("remove lock record %s: %w", collectionName, err)
	}
	return nil
}

// Get fetches the lock record for collectionName.
func (s *LockStore) Get(ctx context.Context, collectionName string) (*Lock, error) {
	var rec Lock
	err := s.col.FindOne(ctx, bson.M{"_id": collectionName}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lock %s: %w", collectionName, err)
	}
	return &rec, nil
}
