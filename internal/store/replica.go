package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ReplicaStore is the typed wrapper over the `replica` auxiliary collection,
// a full mirror of the target collection's documents as of the currently
// checked-out version. Documents are stored verbatim (arbitrary schema), so
// this store deals in bson.M rather than a fixed model.
type ReplicaStore struct {
	col *mongo.Collection
}

// Get fetches the replica of one document by its _id.
func (s *ReplicaStore) Get(ctx context.Context, id any) (bson.M, error) {
	var doc bson.M
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get replica: %w", err)
	}
	return doc, nil
}

// Upsert writes (or overwrites) one document's replica.
func (s *ReplicaStore) Upsert(ctx context.Context, doc bson.M) error {
	id, ok := doc["_id"]
	if !ok {
		return fmt.Errorf("upsert replica: document has no _id")
	}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert replica: %w", err)
	}
	return nil
}

// Delete removes one document's replica, mirroring a checkout that drops it.
func (s *ReplicaStore) Delete(ctx context.Context, id any) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete replica: %w", err)
	}
	return nil
}

// All returns every document currently held in the replica.
func (s *ReplicaStore) All(ctx context.Context) ([]bson.M, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find replica: %w", err)
	}
	var out []bson.M
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode replica: %w", err)
	}
	return out, nil
}

// ReplaceAllFrom drops the replica and recopies target wholesale, the path
// init takes instead of composing deltas.
func (s *ReplicaStore) ReplaceAllFrom(ctx context.Context, target *mongo.Collection) error {
	if err := s.col.Drop(ctx); err != nil {
		return fmt.Errorf("drop replica: %w", err)
	}
	cur, err := target.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("find target: %w", err)
	}
	defer cur.Close(ctx)

	const batchSize = 500
	batch := make([]any, 0, batchSize)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("decode target document: %w", err)
		}
		batch = append(batch, doc)
		if len(batch) == batchSize {
			if _, err := s.col.InsertMany(ctx, batch); err != nil {
				return fmt.Errorf("copy target into replica: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("iterate target: %w", err)
	}
	if len(batch) > 0 {
		if _, err := s.col.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("copy target into replica: %w", err)
		}
	}
	return nil
}
