package processor

import (
	"fmt"
	"time"

	"github.com/horockey/kvrepo/internal/lock"
	"github.com/horockey/kvrepo/internal/model"
	"github.com/horockey/kvrepo/internal/serializer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

const (
	opSave        = "save"
	opFindByKey   = "find_by_key"
	opFindAll     = "find_all"
	opDeleteByKey = "delete_by_key"
	opDeleteAll   = "delete_all"
)

// Processor is the blocking repository core. Writers take the exclusive lock,
// readers the shared one, so FindAll and DeleteAll see no interleaved writes.
type Processor[K, V any] struct {
	engine  model.Engine
	keys    model.Serializer[K]
	values  model.Serializer[V]
	keyType string
	valType string
	lock    *lock.Lock
	Logger  zerolog.Logger
	metrics *metrics
}

func New[K, V any](
	engine model.Engine,
	keys model.Serializer[K],
	values model.Serializer[V],
	logger zerolog.Logger,
) *Processor[K, V] {
	return &Processor[K, V]{
		engine:  engine,
		keys:    keys,
		values:  values,
		keyType: serializer.TypeName[K](),
		valType: serializer.TypeName[V](),
		lock:    lock.New(),
		Logger:  logger,
		metrics: newMetrics(),
	}
}

func (pr *Processor[K, V]) Metrics() []prometheus.Collector {
	return append(pr.metrics.list(), pr.lock.Metrics()...)
}

// Save creates or overwrites the entry for key.
func (pr *Processor[K, V]) Save(key K, value V) (resErr error) {
	defer pr.observe(opSave, time.Now(), &resErr)

	encKey, err := pr.encodeKey(key)
	if err != nil {
		return err
	}

	encVal, err := pr.values.Encode(value)
	if err != nil {
		return model.SerializationError{Type: pr.valType, Err: err}
	}

	pr.Logger.Debug().Str("action", opSave).Int("key_size", len(encKey)).Int("value_size", len(encVal)).Send()

	return pr.lock.Write(func() error {
		if err := pr.engine.Put(encKey, encVal); err != nil {
			return model.EngineError{Op: "put", Err: err}
		}
		return nil
	})
}

// FindByKey returns None when key is absent. Absence is never an error.
func (pr *Processor[K, V]) FindByKey(key K) (res model.Optional[V], resErr error) {
	defer pr.observe(opFindByKey, time.Now(), &resErr)

	encKey, err := pr.encodeKey(key)
	if err != nil {
		return model.None[V](), err
	}

	pr.Logger.Debug().Str("action", opFindByKey).Int("key_size", len(encKey)).Send()

	var (
		data  []byte
		found bool
	)
	if err := pr.lock.Read(func() error {
		data, found, err = pr.engine.Get(encKey)
		if err != nil {
			return model.EngineError{Op: "get", Err: err}
		}
		return nil
	}); err != nil {
		return model.None[V](), err
	}

	if !found {
		pr.metrics.keyMissesCnt.Inc()
		return model.None[V](), nil
	}
	pr.metrics.keyHitsCnt.Inc()

	val, err := pr.values.Decode(data)
	if err != nil {
		return model.None[V](), model.DeserializationError{Type: pr.valType, Err: err}
	}

	return model.Some(val), nil
}

// FindAll returns every value in ascending encoded key order.
// The shared lock is held for the whole scan. A single undecodable entry
// fails the whole call with DeserializationError and no partial result.
func (pr *Processor[K, V]) FindAll() (res []V, resErr error) {
	defer pr.observe(opFindAll, time.Now(), &resErr)

	pr.Logger.Debug().Str("action", opFindAll).Send()

	res = []V{}
	if err := pr.lock.Read(func() (scanErr error) {
		it, err := pr.engine.NewIterator()
		if err != nil {
			return model.EngineError{Op: "new_iterator", Err: err}
		}
		defer func() {
			if err := it.Close(); err != nil {
				scanErr = multierr.Append(scanErr, model.EngineError{Op: "close_iterator", Err: err})
			}
		}()

		for it.SeekToFirst(); it.Valid(); it.Next() {
			data, err := it.Value()
			if err != nil {
				return model.EngineError{Op: "iterator_value", Err: err}
			}

			val, err := pr.values.Decode(data)
			if err != nil {
				return model.DeserializationError{
					Type: pr.valType,
					Err:  fmt.Errorf("entry %q: %w", it.Key(), err),
				}
			}

			res = append(res, val)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return res, nil
}

// DeleteByKey removes key. Removing an absent key succeeds.
func (pr *Processor[K, V]) DeleteByKey(key K) (resErr error) {
	defer pr.observe(opDeleteByKey, time.Now(), &resErr)

	encKey, err := pr.encodeKey(key)
	if err != nil {
		return err
	}

	pr.Logger.Debug().Str("action", opDeleteByKey).Int("key_size", len(encKey)).Send()

	return pr.lock.Write(func() error {
		if err := pr.engine.Delete(encKey); err != nil {
			return model.EngineError{Op: "delete", Err: err}
		}
		return nil
	})
}

// DeleteAll removes every entry under one exclusive lock:
// a range delete of [first, last) followed by a delete of last,
// since the engine range delete excludes its upper bound.
func (pr *Processor[K, V]) DeleteAll() (resErr error) {
	defer pr.observe(opDeleteAll, time.Now(), &resErr)

	pr.Logger.Debug().Str("action", opDeleteAll).Send()

	return pr.lock.Write(func() error {
		first, last, err := pr.bounds()
		if err != nil {
			return err
		}
		if first == nil {
			return nil
		}

		if err := pr.engine.DeleteRange(first, last); err != nil {
			return model.EngineError{Op: "delete_range", Err: err}
		}
		if err := pr.engine.Delete(last); err != nil {
			return model.EngineError{Op: "delete", Err: err}
		}
		return nil
	})
}

// bounds returns the first and last keys, or nils for an empty engine.
// The iterator is closed before returning, so no read txn outlives it.
func (pr *Processor[K, V]) bounds() (first, last []byte, resErr error) {
	it, err := pr.engine.NewIterator()
	if err != nil {
		return nil, nil, model.EngineError{Op: "new_iterator", Err: err}
	}
	defer func() {
		if err := it.Close(); err != nil {
			resErr = multierr.Append(resErr, model.EngineError{Op: "close_iterator", Err: err})
		}
	}()

	it.SeekToFirst()
	if !it.Valid() {
		return nil, nil, nil
	}
	first = it.Key()

	it.SeekToLast()
	if !it.Valid() {
		return nil, nil, nil
	}
	last = it.Key()

	return first, last, nil
}

func (pr *Processor[K, V]) encodeKey(key K) ([]byte, error) {
	encKey, err := pr.keys.Encode(key)
	if err != nil {
		return nil, model.SerializationError{Type: pr.keyType, Err: err}
	}
	if len(encKey) == 0 {
		return nil, model.SerializationError{Type: pr.keyType, Err: model.ErrEmptyKey}
	}
	return encKey, nil
}

func (pr *Processor[K, V]) observe(op string, ts time.Time, resErr *error) {
	pr.metrics.requestsCnt.WithLabelValues(op).Inc()
	pr.metrics.handleTimeHist.WithLabelValues(op).Observe(time.Since(ts).Seconds())

	if *resErr == nil {
		return
	}

	pr.metrics.errProcessCnt.WithLabelValues(op).Inc()
	pr.Logger.
		Error().
		Str("action", op).
		Err(*resErr).
		Send()
}
