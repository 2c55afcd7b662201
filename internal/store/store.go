package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/mongovc/mongovc/server/logging"
)

// Store bundles a dialed mongo client with the auxiliary collections for one
// target collection, plus the typed wrappers the engine operates through.
type Store struct {
	conf   *Config
	client *mongo.Client
	db     *mongo.Database
	names  Names

	Target        *mongo.Collection
	Log           *LogStore
	Branches      *BranchStore
	Metadata      *MetadataStore
	Deltas        *DeltaStore
	Modified      *ModifiedStore
	Replica       *ReplicaStore
	Stash         *StashStore
	Conflicts     *ConflictStore
	LockRecords   *LockStore
}

// Open dials MongoDB, ensures the auxiliary collections' indexes exist, and
// returns a Store wired to the given target collection.
func Open(ctx context.Context, conf *Config, targetCollection string) (*Store, error) {
	dialCtx, cancel := context.WithTimeout(ctx, conf.ParseConnectionTimeout())
	defer cancel()

	opts := options.Client().ApplyURI(conf.ConnectionURI)
	if conf.MonitoringEnabled {
		monitor := NewQueryMonitor(&MonitorConfig{
			Enabled:            conf.MonitoringEnabled,
			SlowQueryThreshold: conf.ParseMonitoringSlowQueryThreshold(),
		})
		opts.SetMonitor(monitor.CreateCommandMonitor())
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(dialCtx, conf.ParsePingTimeout())
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(conf.Database)
	names := NewNames(targetCollection)
	if err := ensureIndexes(ctx, db, names); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("mongovc connected, URI: %s, DB: %s, target: %s", conf.ConnectionURI, conf.Database, targetCollection)

	s := &Store{
		conf:   conf,
		client: client,
		db:     db,
		names:  names,

		Target:      db.Collection(targetCollection),
		Log:         &LogStore{col: db.Collection(names.Log)},
		Branches:    &BranchStore{col: db.Collection(names.Branches)},
		Metadata:    &MetadataStore{col: db.Collection(names.Metadata)},
		Deltas:      &DeltaStore{col: db.Collection(names.Deltas)},
		Modified:    &ModifiedStore{col: db.Collection(names.Modified)},
		Replica:     &ReplicaStore{col: db.Collection(names.Replica)},
		Stash:       &StashStore{docs: db.Collection(names.Stash), modified: db.Collection(names.StashModified)},
		Conflicts:   &ConflictStore{col: db.Collection(names.Conflicts)},
		LockRecords: &LockStore{col: db.Collection(LockCollection)},
	}
	return s, nil
}

// Names returns the auxiliary collection names this store was opened with.
func (s *Store) Names() Names {
	return s.names
}

// Identity returns a string that uniquely identifies this store's
// (host, database, target collection) tuple, the key the sync engine
// orders lock acquisition by to avoid deadlocking two processes pushing
// and pulling the same pair of collections in opposite order.
func (s *Store) Identity() string {
	return s.conf.ConnectionURI + "/" + s.conf.Database + "/" + s.names.Target
}

// Close disconnects the underlying mongo client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}
	return nil
}

// WithTransaction runs fn inside a session-scoped transaction, so the
// auxiliary stores and the replica collection advance atomically: either
// every write in fn lands, or none do.
func (s *Store) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (any, error)) (any, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	return sess.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
		return fn(sessCtx)
	})
}

// Raw exposes the underlying mongo client for callers that need cross-store
// primitives.
func (s *Store) Raw() *mongo.Client {
	return s.client
}

// Database returns the underlying mongo database handle.
func (s *Store) Database() *mongo.Database {
	return s.db
}
