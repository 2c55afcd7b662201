package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// StashStore is the typed wrapper over the `stash` and `stash_modified`
// auxiliary collections: a scratch copy of the uncommitted working set, set
// aside by stash and restored (or discarded) later.
type StashStore struct {
	docs     *mongo.Collection
	modified *mongo.Collection
}

// PutDoc saves one stashed document snapshot.
func (s *StashStore) PutDoc(ctx context.Context, doc bson.M) error {
	id, ok := doc["_id"]
	if !ok {
		return fmt.Errorf("stash document has no _id")
	}
	_, err := s.docs.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("stash document: %w", err)
	}
	return nil
}

// AllDocs returns every stashed document snapshot.
func (s *StashStore) AllDocs(ctx context.Context) ([]bson.M, error) {
	cur, err := s.docs.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find stash docs: %w", err)
	}
	var out []bson.M
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode stash docs: %w", err)
	}
	return out, nil
}

// PutModified records which documents and ops the stash is holding.
func (s *StashStore) PutModified(ctx context.Context, documentID string, op ModifiedOp) error {
	_, err := s.modified.UpdateOne(ctx, bson.M{"_id": documentID}, bson.M{
		"$set": bson.M{"op": op},
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("stash modified %s: %w", documentID, err)
	}
	return nil
}

// AllModified returns the stashed change tracker, mirroring ModifiedStore.All.
func (s *StashStore) AllModified(ctx context.Context) ([]*Modified, error) {
	cur, err := s.modified.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find stash modified: %w", err)
	}
	var out []*Modified
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode stash modified: %w", err)
	}
	return out, nil
}

// IsEmpty reports whether anything is currently stashed.
func (s *StashStore) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.modified.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, fmt.Errorf("count stash modified: %w", err)
	}
	return n == 0, nil
}

// Clear drops both stash collections, run after apply or discard.
func (s *StashStore) Clear(ctx context.Context) error {
	if _, err := s.docs.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear stash docs: %w", err)
	}
	if _, err := s.modified.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear stash modified: %w", err)
	}
	return nil
}
