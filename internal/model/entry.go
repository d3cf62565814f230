package model

import "bytes"

// Entry is a raw engine record.
type Entry struct {
	Key   []byte
	Value []byte
}

func (e Entry) Less(other Entry) bool {
	return bytes.Compare(e.Key, other.Key) < 0
}
