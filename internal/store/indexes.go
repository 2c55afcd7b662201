package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
	name       string
}

func indexSpecsFor(names Names) []indexSpec {
	return []indexSpec{
		{collection: names.Log, keys: bson.D{{Key: "branch", Value: 1}, {Key: "n", Value: 1}}, name: "branch_n"},
		{collection: names.Log, keys: bson.D{{Key: "prev_id", Value: 1}}, name: "prev_id"},
		{collection: names.Deltas, keys: bson.D{{Key: "document_id", Value: 1}, {Key: "branch", Value: 1}, {Key: "version_n", Value: 1}}, name: "doc_branch_n"},
		{collection: names.Deltas, keys: bson.D{{Key: "branch", Value: 1}, {Key: "version_n", Value: 1}}, name: "branch_n"},
		{collection: names.Deltas, keys: bson.D{{Key: "prev_id", Value: 1}}, name: "prev_id"},
	}
}

// ensureIndexes creates the compound indexes the access patterns in the log
// tree, delta tree, and sync engine rely on. Unique constraints on
// singleton-style collections come from their _id being the natural key
// (branch name, document id, collection name) and need no extra index.
func ensureIndexes(ctx context.Context, db *mongo.Database, names Names) error {
	for _, spec := range indexSpecsFor(names) {
		opts := options.Index()
		if spec.name != "" {
			opts.SetName(spec.name)
		}
		if spec.unique {
			opts.SetUnique(true)
		}
		model := mongo.IndexModel{Keys: spec.keys, Options: opts}
		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("ensure index %s on %s: %w", spec.name, spec.collection, err)
		}
	}
	return nil
}
