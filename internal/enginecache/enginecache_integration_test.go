//go:build integration

package enginecache_test

import (
	"context"
	"os"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/engine"
	"github.com/mongovc/mongovc/internal/enginecache"
	"github.com/mongovc/mongovc/internal/store"
)

func testURI(t *testing.T) string {
	uri := os.Getenv("MONGOVC_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("MONGOVC_TEST_MONGODB_URI not set; skipping mongo-backed integration test")
	}
	return uri
}

func TestGetOrOpenSharesOneEngineAcrossTheSameIdentity(t *testing.T) {
	conf := store.Default()
	conf.ConnectionURI = testURI(t)
	conf.Database = "mongovc_test"
	target := "widgets_" + bson.NewObjectID().Hex()
	key := conf.ConnectionURI + "/" + conf.Database + "/" + target

	c := enginecache.New()
	var opens int

	ctx, cancel := context.WithTimeout(context.Background(), 10*gotime.Second)
	defer cancel()

	open := func() (*engine.Engine, error) {
		opens++
		return engine.Open(ctx, conf, target, engine.DefaultConfig())
	}

	first, err := c.GetOrOpen(key, open)
	require.NoError(t, err)
	second, err := c.GetOrOpen(key, open)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, 1, opens)

	require.NoError(t, first.Close(ctx))
	require.NoError(t, second.Close(ctx))
}
