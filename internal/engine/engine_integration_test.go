//go:build integration

package engine_test

import (
	"context"
	"os"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/engine"
	"github.com/mongovc/mongovc/internal/store"
)

func testURI(t *testing.T) string {
	uri := os.Getenv("MONGOVC_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("MONGOVC_TEST_MONGODB_URI not set; skipping mongo-backed integration test")
	}
	return uri
}

func openTestEngine(t *testing.T) *engine.Engine {
	conf := store.Default()
	conf.ConnectionURI = testURI(t)
	conf.Database = "mongovc_test"

	ctx, cancel := context.WithTimeout(context.Background(), 10*gotime.Second)
	defer cancel()

	e, err := engine.Open(ctx, conf, "widgets_"+bson.NewObjectID().Hex(), engine.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Close(context.Background())
	})
	return e
}

func TestInitRegisterCheckoutLifecycle(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()
	target := e.Store().Target

	require.NoError(t, e.Init(ctx, "initial snapshot"))
	e.Start()

	id := bson.NewObjectID()
	_, err := target.InsertOne(ctx, bson.M{"_id": id, "name": "widget-a", "qty": 1})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, _ := e.Store().Modified.Count(ctx)
		return n > 0
	}, 5*gotime.Second, 50*gotime.Millisecond)

	require.NoError(t, e.Register(ctx, "add widget-a", ""))

	status, err := e.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, status.CurrentN)
	require.Equal(t, "main", status.CurrentBranch)
	require.False(t, status.Detached)
	require.Zero(t, status.PendingCount)

	_, err = target.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"qty": 2}})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		n, _ := e.Store().Modified.Count(ctx)
		return n > 0
	}, 5*gotime.Second, 50*gotime.Millisecond)
	require.NoError(t, e.Register(ctx, "bump qty", ""))

	require.NoError(t, e.Checkout(ctx, 1, "main"))

	var doc bson.M
	err = target.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	require.NoError(t, err)
	require.Equal(t, int32(1), doc["qty"])

	require.NoError(t, e.Checkout(ctx, 2, "main"))
	err = target.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	require.NoError(t, err)
	require.Equal(t, int32(2), doc["qty"])

	log, err := e.Log(ctx, "main")
	require.NoError(t, err)
	require.Len(t, log, 3)
}

func TestCreateBranchAndDiff(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()
	target := e.Store().Target

	require.NoError(t, e.Init(ctx, "root"))
	e.Start()

	id := bson.NewObjectID()
	_, err := target.InsertOne(ctx, bson.M{"_id": id, "v": 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		n, _ := e.Store().Modified.Count(ctx)
		return n > 0
	}, 5*gotime.Second, 50*gotime.Millisecond)
	require.NoError(t, e.Register(ctx, "add doc", ""))

	require.NoError(t, e.CreateBranch(ctx, "feature"))

	diffs, err := e.DiffVersions(ctx, 0, "main", 1, "main")
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	branches, err := e.Branches(ctx)
	require.NoError(t, err)
	names := make(map[string]bool, len(branches))
	for _, b := range branches {
		names[b.Name] = true
	}
	require.True(t, names["main"])
	require.True(t, names["feature"])
}

func TestUntrackDropsHistoryButKeepsDocuments(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()
	target := e.Store().Target

	require.NoError(t, e.Init(ctx, "root"))
	e.Start()

	id := bson.NewObjectID()
	_, err := target.InsertOne(ctx, bson.M{"_id": id, "v": 1})
	require.NoError(t, err)

	require.NoError(t, e.Untrack(ctx))

	rec, err := e.Store().LockRecords.Get(ctx, e.Store().Names().Target)
	require.NoError(t, err)
	require.Nil(t, rec)

	meta, err := e.Store().Metadata.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, meta)

	var doc bson.M
	require.NoError(t, target.FindOne(ctx, bson.M{"_id": id}).Decode(&doc))
	require.Equal(t, int32(1), doc["v"])

	require.Error(t, e.Untrack(ctx))
}
