package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ModifiedStore is the typed wrapper over the `modified` auxiliary
// collection, the listener's change-stream tracker awaiting the next
// register. The listener owns the coalescing precedence; this store only
// provides the primitives it composes.
type ModifiedStore struct {
	col *mongo.Collection
}

// Upsert overwrites the tracked op for documentID.
func (s *ModifiedStore) Upsert(ctx context.Context, documentID string, op ModifiedOp) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": documentID}, bson.M{
		"$set": bson.M{"op": op},
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert modified %s: %w", documentID, err)
	}
	return nil
}

// Get fetches the tracked op for documentID, or nil if untracked.
func (s *ModifiedStore) Get(ctx context.Context, documentID string) (*Modified, error) {
	var m Modified
	err := s.col.FindOne(ctx, bson.M{"_id": documentID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get modified %s: %w", documentID, err)
	}
	return &m, nil
}

// Delete clears the tracked op for documentID.
func (s *ModifiedStore) Delete(ctx context.Context, documentID string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": documentID}); err != nil {
		return fmt.Errorf("delete modified %s: %w", documentID, err)
	}
	return nil
}

// All returns every tracked change, the working set a register pass diffs.
func (s *ModifiedStore) All(ctx context.Context) ([]*Modified, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find modified: %w", err)
	}
	var out []*Modified
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode modified: %w", err)
	}
	return out, nil
}

// Count reports how many documents are pending registration.
func (s *ModifiedStore) Count(ctx context.Context) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count modified: %w", err)
	}
	return n, nil
}

// Clear drops every tracked change, run after a successful register.
func (s *ModifiedStore) Clear(ctx context.Context) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear modified: %w", err)
	}
	return nil
}
