package bolt_engine

import (
	"fmt"
	"slices"

	"github.com/horockey/kvrepo/internal/model"
	bolt "go.etcd.io/bbolt"
)

var _ model.Iterator = &iterator{}

type iterator struct {
	tx     *bolt.Tx
	cursor *bolt.Cursor
	key    []byte
	value  []byte
}

func (it *iterator) SeekToFirst() {
	it.key, it.value = it.cursor.First()
}

func (it *iterator) SeekToLast() {
	it.key, it.value = it.cursor.Last()
}

func (it *iterator) Valid() bool {
	return it.key != nil
}

func (it *iterator) Key() []byte {
	return slices.Clone(it.key)
}

func (it *iterator) Value() ([]byte, error) {
	return slices.Clone(it.value), nil
}

func (it *iterator) Next() {
	if it.key == nil {
		return
	}
	it.key, it.value = it.cursor.Next()
}

func (it *iterator) Close() error {
	it.key, it.value = nil, nil
	if err := it.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back read tx: %w", err)
	}
	return nil
}
