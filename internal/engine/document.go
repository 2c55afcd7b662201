package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mongovc/mongovc/internal/codec"
)

// replaceUpsert is the options.ReplaceOptions every checkout/merge document
// write shares: replace wholesale, creating the document if checkout is
// materializing an insert.
func replaceUpsert() *options.ReplaceOptionsBuilder {
	return options.Replace().SetUpsert(true)
}

// emptyMapValue represents "this document does not exist at this version".
// See codec.EmptyMap for why an empty map, not null.
func emptyMapValue() codec.Value {
	return codec.EmptyMap()
}

// loadValue fetches the document with the given raw _id from col and
// converts it to a codec.Value, or returns emptyMapValue if it doesn't
// exist there.
func loadValue(ctx context.Context, col *mongo.Collection, rawID any) (codec.Value, error) {
	var doc bson.M
	err := col.FindOne(ctx, bson.M{"_id": rawID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return emptyMapValue(), nil
	}
	if err != nil {
		return codec.Value{}, err
	}
	return codec.FromBSON(doc)
}

// rawDocument fetches the raw bson.M document with the given _id from col,
// or nil if it doesn't exist.
func rawDocument(ctx context.Context, col *mongo.Collection, rawID any) (bson.M, error) {
	var doc bson.M
	err := col.FindOne(ctx, bson.M{"_id": rawID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
