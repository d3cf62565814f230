package bolt_engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/horockey/kvrepo/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

var _ model.Engine = &Engine{}

const DefaultBucket = "kvrepo"

// Engine stores all entries in a single bbolt bucket.
type Engine struct {
	db      *bolt.DB
	bucket  []byte
	ownsDB  bool
	logger  zerolog.Logger
	metrics *metrics
}

// New wraps an already opened db, creating bucket if needed.
func New(db *bolt.DB, bucket string, logger zerolog.Logger) (*Engine, error) {
	if bucket == "" {
		return nil, errors.New("got empty bucket name")
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("performing upd txn: %w", err)
	}

	e := Engine{
		db:     db,
		bucket: []byte(bucket),
		logger: logger,
	}
	e.metrics = newMetrics(&e)

	return &e, nil
}

// Open opens (or creates) a bbolt file at path. The returned engine owns the db.
func Open(path string, logger zerolog.Logger) (*Engine, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating dir for %s: %w", path, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	e, err := New(db, DefaultBucket, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	e.ownsDB = true

	logger.Info().Str("path", path).Msg("bolt db opened")
	return e, nil
}

// Close closes the db if it was opened by Open.
func (e *Engine) Close() error {
	if !e.ownsDB {
		return nil
	}
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("closing bolt db: %w", err)
	}
	return nil
}

func (e *Engine) Metrics() []prometheus.Collector {
	return e.metrics.list()
}

func (e *Engine) Put(key, value []byte) (resErr error) {
	defer e.metrics.observe("put", time.Now(), &resErr)

	if err := e.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(e.bucket).Put(key, value); err != nil {
			return fmt.Errorf("putting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing upd txn: %w", err)
	}

	return nil
}

func (e *Engine) Get(key []byte) (res []byte, found bool, resErr error) {
	defer e.metrics.observe("get", time.Now(), &resErr)

	if err := e.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(e.bucket).Get(key)
		if val == nil {
			return nil
		}
		// val is only valid inside the tx
		res, found = slices.Clone(val), true
		return nil
	}); err != nil {
		return nil, false, fmt.Errorf("performing view txn: %w", err)
	}

	return res, found, nil
}

func (e *Engine) Delete(key []byte) (resErr error) {
	defer e.metrics.observe("delete", time.Now(), &resErr)

	if err := e.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(e.bucket).Delete(key); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing del txn: %w", err)
	}

	return nil
}

func (e *Engine) DeleteRange(low, high []byte) (resErr error) {
	defer e.metrics.observe("delete_range", time.Now(), &resErr)

	if err := e.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(e.bucket).Cursor()
		// cursor.Delete moves the cursor, so re-seek after every deletion
		for k, _ := c.Seek(low); k != nil && bytes.Compare(k, high) < 0; k, _ = c.Seek(low) {
			if err := c.Delete(); err != nil {
				return fmt.Errorf("deleting item: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing del range txn: %w", err)
	}

	return nil
}

// NewIterator returns an iterator bound to a read-only tx.
// Close must be called to release the tx.
func (e *Engine) NewIterator() (model.Iterator, error) {
	tx, err := e.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("beginning read tx: %w", err)
	}

	return &iterator{
		tx:     tx,
		cursor: tx.Bucket(e.bucket).Cursor(),
	}, nil
}

func (e *Engine) size() int {
	n := 0
	if err := e.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(e.bucket).Stats().KeyN
		return nil
	}); err != nil {
		e.logger.
			Error().
			Err(fmt.Errorf("reading bucket stats: %w", err)).
			Send()
	}
	return n
}
