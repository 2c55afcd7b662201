package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MetadataStore is the typed wrapper over the singleton `metadata` document.
type MetadataStore struct {
	col *mongo.Collection
}

// Get fetches the metadata singleton, or nil if init has not run.
func (s *MetadataStore) Get(ctx context.Context) (*Metadata, error) {
	var m Metadata
	err := s.col.FindOne(ctx, bson.M{"_id": metadataSingletonID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return &m, nil
}

// Set overwrites the metadata singleton wholesale.
func (s *MetadataStore) Set(ctx context.Context, m *Metadata) error {
	m.ID = metadataSingletonID
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": metadataSingletonID}, bson.M{
		"$set": m,
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

// Update applies a partial $set to the metadata singleton.
func (s *MetadataStore) Update(ctx context.Context, fields bson.M) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": metadataSingletonID}, bson.M{
		"$set": fields,
	}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	return nil
}
