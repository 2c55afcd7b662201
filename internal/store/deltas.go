package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// DeltaStore is the typed wrapper over the `deltas` auxiliary collection,
// one invertible diff per (document, version) pair.
type DeltaStore struct {
	col *mongo.Collection
}

// Insert appends one delta record.
func (s *DeltaStore) Insert(ctx context.Context, d *DeltaRecord) error {
	if _, err := s.col.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert delta %s: %w", d.ID, err)
	}
	return nil
}

// InsertMany appends a batch of delta records, one register call's worth.
func (s *DeltaStore) InsertMany(ctx context.Context, ds []*DeltaRecord) error {
	if len(ds) == 0 {
		return nil
	}
	docs := make([]any, len(ds))
	for i, d := range ds {
		docs[i] = d
	}
	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %d deltas: %w", len(ds), err)
	}
	return nil
}

// Get fetches a delta record by id.
func (s *DeltaStore) Get(ctx context.Context, id string) (*DeltaRecord, error) {
	var d DeltaRecord
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get delta %s: %w", id, err)
	}
	return &d, nil
}

// GetByVersion fetches the delta recorded for documentID at (n, branch).
func (s *DeltaStore) GetByVersion(ctx context.Context, documentID string, n int, branch string) (*DeltaRecord, error) {
	var d DeltaRecord
	filter := bson.M{"document_id": documentID, "version_n": n, "branch": branch}
	err := s.col.FindOne(ctx, filter).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get delta for %s at (%d,%s): %w", documentID, n, branch, err)
	}
	return &d, nil
}

// All returns every delta record in the collection, the sync engine's
// bulk-fetch path when pulling or pushing an entire log history.
func (s *DeltaStore) All(ctx context.Context) ([]*DeltaRecord, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find all deltas: %w", err)
	}
	var out []*DeltaRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode all deltas: %w", err)
	}
	return out, nil
}

// AllAtVersion returns every delta recorded at (n, branch), across all
// documents touched by that version. Checkout uses this to discover which
// documents a log tree path touches without scanning every document.
func (s *DeltaStore) AllAtVersion(ctx context.Context, n int, branch string) ([]*DeltaRecord, error) {
	cur, err := s.col.Find(ctx, bson.M{"version_n": n, "branch": branch})
	if err != nil {
		return nil, fmt.Errorf("find deltas at (%d,%s): %w", n, branch, err)
	}
	var out []*DeltaRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode deltas at (%d,%s): %w", n, branch, err)
	}
	return out, nil
}

// AllForDocument returns every delta ever recorded for documentID, in no
// particular order; the delta tree composes them along a log-tree path.
func (s *DeltaStore) AllForDocument(ctx context.Context, documentID string) ([]*DeltaRecord, error) {
	cur, err := s.col.Find(ctx, bson.M{"document_id": documentID})
	if err != nil {
		return nil, fmt.Errorf("find deltas for %s: %w", documentID, err)
	}
	var out []*DeltaRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode deltas for %s: %w", documentID, err)
	}
	return out, nil
}

// AppendNextID records a child delta id on the parent's next_ids list.
func (s *DeltaStore) AppendNextID(ctx context.Context, parentID, childID string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{
		"$push": bson.M{"next_ids": childID},
	})
	if err != nil {
		return fmt.Errorf("append next id to delta %s: %w", parentID, err)
	}
	return nil
}

// RemoveNextID detaches a deleted child delta id from its parent's next_ids.
func (s *DeltaStore) RemoveNextID(ctx context.Context, parentID, childID string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{
		"$pull": bson.M{"next_ids": childID},
	})
	if err != nil {
		return fmt.Errorf("remove next id from delta %s: %w", parentID, err)
	}
	return nil
}

// DeleteMany removes the given delta records, used by delete_version_subtree.
func (s *DeltaStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete deltas: %w", err)
	}
	return nil
}
