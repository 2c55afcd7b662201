package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BranchStore is the typed wrapper over the `branches` auxiliary collection.
type BranchStore struct {
	col *mongo.Collection
}

// Upsert writes (or overwrites) the tip record for a branch.
func (s *BranchStore) Upsert(ctx context.Context, b *BranchRecord) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": b.Name}, bson.M{
		"$set": bson.M{"tip_n": b.TipN, "tip_branch": b.TipBranch},
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert branch %s: %w", b.Name, err)
	}
	return nil
}

// Get fetches a branch record by name.
func (s *BranchStore) Get(ctx context.Context, name string) (*BranchRecord, error) {
	var b BranchRecord
	err := s.col.FindOne(ctx, bson.M{"_id": name}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get branch %s: %w", name, err)
	}
	return &b, nil
}

// All returns every branch record.
func (s *BranchStore) All(ctx context.Context) ([]*BranchRecord, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find branches: %w", err)
	}
	var out []*BranchRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode branches: %w", err)
	}
	return out, nil
}

// Delete removes a branch record.
func (s *BranchStore) Delete(ctx context.Context, name string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	return nil
}
