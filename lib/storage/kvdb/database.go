package kvdb

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kvdb: not found")

// Database wraps all database operations. All methods are safe for concurrent use.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	Close() error
	NewBatch() Batch
	// NewIteratorWithRange iterates over [start, limit). A nil limit means no upper bound.
	NewIteratorWithRange(start []byte, limit []byte) Iterator
	NewIteratorWithPrefix(prefix []byte) Iterator
}

// Batch buffers writes until Write is called.
type Batch interface {
	ValueSize() int
	Write() error
	Reset()
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Iterator walks keys in ascending byte order. The first call to Next
// positions it at the first entry. Key and Value are only valid until the
// next move.
type Iterator interface {
	Key() []byte
	Value() []byte
	Next() bool
	First() bool
	Error() error
	Release()
}
