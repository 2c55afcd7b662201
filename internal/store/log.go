package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// LogStore is the typed wrapper over the `log` auxiliary collection.
type LogStore struct {
	col *mongo.Collection
}

// Insert appends one log entry.
func (s *LogStore) Insert(ctx context.Context, e *LogEntry) error {
	if _, err := s.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// Get fetches a log entry by id.
func (s *LogStore) Get(ctx context.Context, id string) (*LogEntry, error) {
	var e LogEntry
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get log entry %s: %w", id, err)
	}
	return &e, nil
}

// GetByVersion fetches the log entry for (n, branch).
func (s *LogStore) GetByVersion(ctx context.Context, n int, branch string) (*LogEntry, error) {
	var e LogEntry
	err := s.col.FindOne(ctx, bson.M{"n": n, "branch": branch}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log entry (%d,%s): %w", n, branch, err)
	}
	return &e, nil
}

// All returns every log entry, for loading the in-memory log tree.
func (s *LogStore) All(ctx context.Context) ([]*LogEntry, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find log entries: %w", err)
	}
	var out []*LogEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode log entries: %w", err)
	}
	return out, nil
}

// AppendNextID records a child id on the parent's next_ids list.
func (s *LogStore) AppendNextID(ctx context.Context, parentID, childID string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{
		"$push": bson.M{"next_ids": childID},
	})
	if err != nil {
		return fmt.Errorf("append next id to %s: %w", parentID, err)
	}
	return nil
}

// DeleteMany removes the given log entries, used by delete_version_subtree.
func (s *LogStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete log entries: %w", err)
	}
	return nil
}

// RemoveNextID detaches a deleted child id from its parent's next_ids list.
func (s *LogStore) RemoveNextID(ctx context.Context, parentID, childID string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{
		"$pull": bson.M{"next_ids": childID},
	})
	if err != nil {
		return fmt.Errorf("remove next id from %s: %w", parentID, err)
	}
	return nil
}
