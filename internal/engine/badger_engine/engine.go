package badger_engine

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/kvrepo/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ model.Engine = &Engine{}

// Keys deleted per transaction pass in DeleteRange.
const deleteChunkSize = 10_000

type Engine struct {
	db      *badger.DB
	ownsDB  bool
	metrics *metrics
}

// New wraps an already opened db. Closing the db stays with the caller.
func New(db *badger.DB) *Engine {
	return &Engine{
		db:      db,
		metrics: newMetrics(db),
	}
}

// Open opens (or creates) a badger db in dir. The returned engine owns the db.
func Open(dir string, logger zerolog.Logger) (*Engine, error) {
	if dir == "" {
		return nil, errors.New("got empty badger dir")
	}

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(newLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}

	e := New(db)
	e.ownsDB = true
	return e, nil
}

// Close closes the db if it was opened by Open.
func (e *Engine) Close() error {
	if !e.ownsDB {
		return nil
	}
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("closing badger db: %w", err)
	}
	return nil
}

func (e *Engine) Metrics() []prometheus.Collector {
	return e.metrics.list()
}

func (e *Engine) Put(key, value []byte) (resErr error) {
	defer e.metrics.observe("put", time.Now(), &resErr)

	if err := e.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return fmt.Errorf("setting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing upd txn: %w", err)
	}

	return nil
}

func (e *Engine) Get(key []byte) (res []byte, found bool, resErr error) {
	defer func(ts time.Time) {
		e.metrics.observe("get", ts, &resErr)
		switch {
		case resErr != nil:
		case found:
			e.metrics.keyHitsCnt.Inc()
		default:
			e.metrics.keyMissesCnt.Inc()
		}
	}(time.Now())

	if err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return fmt.Errorf("getting item: %w", err)
		}

		res, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("getting value: %w", err)
		}
		found = true

		return nil
	}); err != nil {
		return nil, false, fmt.Errorf("reading from db: %w", err)
	}

	return res, found, nil
}

func (e *Engine) Delete(key []byte) (resErr error) {
	defer e.metrics.observe("delete", time.Now(), &resErr)

	if err := e.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing del txn: %w", err)
	}

	return nil
}

// DeleteRange removes keys in [low, high) in passes of deleteChunkSize keys.
// Badger has no native range tombstone, so each pass collects keys in a read txn
// and deletes them in write txns, committing early on badger.ErrTxnTooBig.
func (e *Engine) DeleteRange(low, high []byte) (resErr error) {
	defer e.metrics.observe("delete_range", time.Now(), &resErr)

	for {
		keys, err := e.collectKeys(low, high, deleteChunkSize)
		if err != nil {
			return fmt.Errorf("collecting keys: %w", err)
		}

		if err := e.deleteKeys(keys); err != nil {
			return fmt.Errorf("deleting keys: %w", err)
		}

		if len(keys) < deleteChunkSize {
			return nil
		}
	}
}

func (e *Engine) collectKeys(low, high []byte, limit int) ([][]byte, error) {
	keys := [][]byte{}

	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(low); it.Valid() && len(keys) < limit; it.Next() {
			key := it.Item().KeyCopy(nil)
			if bytes.Compare(key, high) >= 0 {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("performing view txn: %w", err)
	}

	return keys, nil
}

func (e *Engine) deleteKeys(keys [][]byte) error {
	txn := e.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	for _, key := range keys {
		err := txn.Delete(key)
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return fmt.Errorf("committing txn: %w", err)
			}
			txn = e.db.NewTransaction(true)
			err = txn.Delete(key)
		}
		if err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("committing txn: %w", err)
	}
	return nil
}

// NewIterator returns an iterator bound to a read-only txn.
// Close must be called to discard the txn.
func (e *Engine) NewIterator() (model.Iterator, error) {
	return &iterator{txn: e.db.NewTransaction(false)}, nil
}
