package model

// Engine is a sorted byte-oriented key-value store.
// Implementations must be safe for concurrent use on a per-call basis.
type Engine interface {
	Put(key, value []byte) error
	// Get reports found=false with nil error when key is absent.
	Get(key []byte) (value []byte, found bool, err error)
	// Deleting an absent key is a no-op.
	Delete(key []byte) error
	// DeleteRange removes every key in [low, high).
	DeleteRange(low, high []byte) error
	NewIterator() (Iterator, error)
}

// Iterator walks engine entries in ascending key order.
// Key and Value return copies, valid after the iterator moves.
type Iterator interface {
	SeekToFirst()
	SeekToLast()
	Valid() bool
	Key() []byte
	Value() ([]byte, error)
	Next()
	Close() error
}
