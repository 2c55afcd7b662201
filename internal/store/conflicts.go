package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ConflictStore is the typed wrapper over the `conflicts` auxiliary
// collection, one record per document left unresolved by a pull's
// three-way merge.
type ConflictStore struct {
	col *mongo.Collection
}

// Upsert writes (or overwrites) one document's conflict record.
func (s *ConflictStore) Upsert(ctx context.Context, c *Conflict) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": c.DocumentID}, bson.M{
		"$set": c,
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert conflict %s: %w", c.DocumentID, err)
	}
	return nil
}

// Get fetches the conflict record for documentID, or nil if resolved.
func (s *ConflictStore) Get(ctx context.Context, documentID string) (*Conflict, error) {
	var c Conflict
	err := s.col.FindOne(ctx, bson.M{"_id": documentID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conflict %s: %w", documentID, err)
	}
	return &c, nil
}

// All returns every unresolved conflict.
func (s *ConflictStore) All(ctx context.Context) ([]*Conflict, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find conflicts: %w", err)
	}
	var out []*Conflict
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode conflicts: %w", err)
	}
	return out, nil
}

// Delete clears the conflict record for a resolved document.
func (s *ConflictStore) Delete(ctx context.Context, documentID string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": documentID}); err != nil {
		return fmt.Errorf("delete conflict %s: %w", documentID, err)
	}
	return nil
}

// Count reports how many conflicts remain unresolved.
func (s *ConflictStore) Count(ctx context.Context) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count conflicts: %w", err)
	}
	return n, nil
}

// Clear drops every conflict record, run once resolve_conflicts finishes.
func (s *ConflictStore) Clear(ctx context.Context) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear conflicts: %w", err)
	}
	return nil
}
