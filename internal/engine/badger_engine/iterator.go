package badger_engine

import (
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/horockey/kvrepo/internal/model"
)

var _ model.Iterator = &iterator{}

// iterator keeps one badger iterator at a time: a forward one after SeekToFirst
// and a reverse one after SeekToLast. Next on a reverse iterator ends the walk.
type iterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	reverse bool
	done    bool
}

func (it *iterator) reset(reverse bool) {
	if it.it != nil {
		it.it.Close()
	}

	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse

	it.it = it.txn.NewIterator(opts)
	it.reverse = reverse
	it.done = false
	it.it.Rewind()
}

func (it *iterator) SeekToFirst() {
	it.reset(false)
}

func (it *iterator) SeekToLast() {
	it.reset(true)
}

func (it *iterator) Valid() bool {
	return it.it != nil && !it.done && it.it.Valid()
}

func (it *iterator) Key() []byte {
	return it.it.Item().KeyCopy(nil)
}

func (it *iterator) Value() ([]byte, error) {
	val, err := it.it.Item().ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("copying value: %w", err)
	}
	return val, nil
}

func (it *iterator) Next() {
	if !it.Valid() {
		return
	}
	if it.reverse {
		it.done = true
		return
	}
	it.it.Next()
}

func (it *iterator) Close() error {
	if it.it != nil {
		it.it.Close()
		it.it = nil
	}
	it.txn.Discard()
	return nil
}
