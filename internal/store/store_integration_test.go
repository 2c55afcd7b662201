//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/store"
)

func testURI(t *testing.T) string {
	uri := os.Getenv("MONGOVC_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("MONGOVC_TEST_MONGODB_URI not set; skipping mongo-backed integration test")
	}
	return uri
}

func openTestStore(t *testing.T) *store.Store {
	conf := store.Default()
	conf.ConnectionURI = testURI(t)
	conf.Database = "mongovc_test"

	ctx, cancel := context.WithTimeout(context.Background(), 10*gotime.Second)
	defer cancel()

	s, err := store.Open(ctx, conf, "widgets_"+bson.NewObjectID().Hex())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

func TestOpenEnsuresIndexesAndNames(t *testing.T) {
	s := openTestStore(t)

	names := s.Names()
	require.NotEmpty(t, names.Log)
	require.NotEmpty(t, names.Deltas)
}

func TestLogStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := &store.LogEntry{ID: "v0", N: 0, Branch: "main", Timestamp: gotime.Now(), Message: "init"}
	require.NoError(t, s.Log.Insert(ctx, entry))

	got, err := s.Log.GetByVersion(ctx, 0, "main")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "v0", got.ID)

	require.NoError(t, s.Log.AppendNextID(ctx, "v0", "v1"))
	got, err = s.Log.Get(ctx, "v0")
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, got.NextIDs)
}

func TestMetadataSingleton(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m, err := s.Metadata.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, m)

	require.NoError(t, s.Metadata.Set(ctx, &store.Metadata{CurrentN: 0, CurrentBranch: "main"}))
	m, err = s.Metadata.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "main", m.CurrentBranch)

	require.NoError(t, s.Metadata.Update(ctx, bson.M{"changed": true}))
	m, err = s.Metadata.Get(ctx)
	require.NoError(t, err)
	require.True(t, m.Changed)
}

func TestLockAcquireReentrantAndRelease(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	collectionName := "widgets"

	require.NoError(t, s.LockRecords.EnsureRecord(ctx, collectionName))

	acquired, depth, _, err := s.LockRecords.TryAcquire(ctx, collectionName, "holder-a")
	require.NoError(t, err)
	require.True(t, acquired)
	require.Equal(t, 1, depth)

	acquired, depth, _, err = s.LockRecords.TryAcquire(ctx, collectionName, "holder-a")
	require.NoError(t, err)
	require.True(t, acquired)
	require.Equal(t, 2, depth)

	acquired, _, _, err = s.LockRecords.TryAcquire(ctx, collectionName, "holder-b")
	require.NoError(t, err)
	require.False(t, acquired)

	_, err = s.LockRecords.Release(ctx, collectionName, "holder-a", false)
	require.NoError(t, err)
	rec, err := s.LockRecords.Get(ctx, collectionName)
	require.NoError(t, err)
	require.True(t, rec.Locked)

	epochBefore := rec.Epoch
	epochAfter, err := s.LockRecords.Release(ctx, collectionName, "holder-a", true)
	require.NoError(t, err)
	require.Equal(t, epochBefore+1, epochAfter)

	rec, err = s.LockRecords.Get(ctx, collectionName)
	require.NoError(t, err)
	require.False(t, rec.Locked)
}

func TestLockRemoveRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	collectionName := "widgets-removed"

	require.NoError(t, s.LockRecords.EnsureRecord(ctx, collectionName))
	rec, err := s.LockRecords.Get(ctx, collectionName)
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.NoError(t, s.LockRecords.RemoveRecord(ctx, collectionName))

	rec, err = s.LockRecords.Get(ctx, collectionName)
	require.NoError(t, err)
	require.Nil(t, rec)
}
