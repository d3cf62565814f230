package kvrepo

import (
	"github.com/dgraph-io/badger"
	"github.com/horockey/kvrepo/internal/engine/badger_engine"
	"github.com/horockey/kvrepo/internal/engine/bolt_engine"
	"github.com/horockey/kvrepo/internal/engine/inmemory_engine"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

type (
	BadgerEngine = badger_engine.Engine
	BoltEngine   = bolt_engine.Engine
)

// NewBadgerEngine wraps an opened badger db. The caller keeps closing it.
func NewBadgerEngine(db *badger.DB) *BadgerEngine {
	return badger_engine.New(db)
}

// OpenBadgerEngine opens a badger db in dir. Close on the engine closes the db.
func OpenBadgerEngine(dir string, logger zerolog.Logger) (*BadgerEngine, error) {
	return badger_engine.Open(dir, logger)
}

// NewBoltEngine wraps an opened bbolt db, storing entries in bucket.
func NewBoltEngine(db *bolt.DB, bucket string, logger zerolog.Logger) (*BoltEngine, error) {
	return bolt_engine.New(db, bucket, logger)
}

// OpenBoltEngine opens a bbolt file at path. Close on the engine closes the db.
func OpenBoltEngine(path string, logger zerolog.Logger) (*BoltEngine, error) {
	return bolt_engine.Open(path, logger)
}

// NewInMemoryEngine returns a volatile btree engine, mostly for tests.
func NewInMemoryEngine() Engine {
	return inmemory_engine.New()
}
