package sync

import (
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// replaceUpsert is the options.ReplaceOptions merge's materialize write
// shares with a checkout: replace wholesale, creating the document if the
// merge result is an insert the local side never had.
func replaceUpsert() *options.ReplaceOptionsBuilder {
	return options.Replace().SetUpsert(true)
}
