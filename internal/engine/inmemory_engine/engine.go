package inmemory_engine

import (
	"slices"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/horockey/kvrepo/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

var _ model.Engine = &inmemoryEngine{}

const degree = 32

type inmemoryEngine struct {
	tree    *btree.BTreeG[model.Entry]
	mu      sync.RWMutex
	metrics *metrics
}

func New() *inmemoryEngine {
	e := inmemoryEngine{
		tree: btree.NewG[model.Entry](degree, model.Entry.Less),
	}

	e.metrics = newMetrics(&e)

	return &e
}

func (e *inmemoryEngine) Metrics() []prometheus.Collector {
	return e.metrics.list()
}

func (e *inmemoryEngine) Put(key, value []byte) (resErr error) {
	defer e.metrics.observe("put", time.Now(), &resErr)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.tree.ReplaceOrInsert(model.Entry{
		Key:   slices.Clone(key),
		Value: slices.Clone(value),
	})
	return nil
}

func (e *inmemoryEngine) Get(key []byte) (res []byte, found bool, resErr error) {
	defer e.metrics.observe("get", time.Now(), &resErr)

	e.mu.RLock()
	defer e.mu.RUnlock()

	ent, found := e.tree.Get(model.Entry{Key: key})
	if !found {
		return nil, false, nil
	}

	return slices.Clone(ent.Value), true, nil
}

func (e *inmemoryEngine) Delete(key []byte) (resErr error) {
	defer e.metrics.observe("delete", time.Now(), &resErr)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.tree.Delete(model.Entry{Key: key})
	return nil
}

func (e *inmemoryEngine) DeleteRange(low, high []byte) (resErr error) {
	defer e.metrics.observe("delete_range", time.Now(), &resErr)

	e.mu.Lock()
	defer e.mu.Unlock()

	doomed := []model.Entry{}
	e.tree.AscendRange(
		model.Entry{Key: low},
		model.Entry{Key: high},
		func(ent model.Entry) bool {
			doomed = append(doomed, ent)
			return true
		},
	)

	for _, ent := range doomed {
		e.tree.Delete(ent)
	}
	return nil
}

// NewIterator returns an iterator over a copy-on-write snapshot of the tree.
func (e *inmemoryEngine) NewIterator() (model.Iterator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Clone marks shared nodes, so it needs exclusive access.
	return &iterator{snapshot: e.tree.Clone(), pos: -1}, nil
}

type iterator struct {
	snapshot *btree.BTreeG[model.Entry]
	entries  []model.Entry
	pos      int
}

func (it *iterator) load() {
	if it.entries != nil {
		return
	}
	it.entries = make([]model.Entry, 0, it.snapshot.Len())
	it.snapshot.Ascend(func(ent model.Entry) bool {
		it.entries = append(it.entries, ent)
		return true
	})
}

func (it *iterator) SeekToFirst() {
	it.load()
	it.pos = 0
}

func (it *iterator) SeekToLast() {
	it.load()
	it.pos = len(it.entries) - 1
}

func (it *iterator) Valid() bool {
	return it.pos >= 0 && it.pos < len(it.entries)
}

func (it *iterator) Key() []byte {
	return slices.Clone(it.entries[it.pos].Key)
}

func (it *iterator) Value() ([]byte, error) {
	return slices.Clone(it.entries[it.pos].Value), nil
}

func (it *iterator) Next() {
	if it.Valid() {
		it.pos++
	}
}

func (it *iterator) Close() error {
	it.entries = nil
	it.snapshot = nil
	it.pos = -1
	return nil
}
