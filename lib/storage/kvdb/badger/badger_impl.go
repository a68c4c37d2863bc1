package badger

import (
	"bytes"

	"github.com/dgraph-io/badger/v3"

	"github.com/xuperchain/xstake/lib/storage/kvdb"
)

func init() {
	kvdb.Register(kvdb.KVEngineTypeBadger, NewKVDBInstance)
}

// BadgerDatabase define data structure of storage
type BadgerDatabase struct {
	path string
	db   *badger.DB
}

// NewKVDBInstance opens badger at param.DBPath, or in memory when the storage type is memory.
func NewKVDBInstance(param *kvdb.KVParameter) (kvdb.Database, error) {
	bdb := new(BadgerDatabase)
	if err := bdb.Open(param); err != nil {
		return nil, err
	}
	return bdb, nil
}

// Open opens badger with options derived from param
func (bdb *BadgerDatabase) Open(param *kvdb.KVParameter) error {
	var opts badger.Options
	if param.GetStorageType() == kvdb.StorageTypeMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(param.GetDBPath())
	}
	// badger logs through its own logger, keep it quiet
	opts = opts.WithLogger(nil)
	if param.GetMemCacheSize() > 0 {
		opts = opts.WithBlockCacheSize(int64(param.GetMemCacheSize()) << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	bdb.path = param.GetDBPath()
	bdb.db = db
	return nil
}

// Path returns the path to the database directory.
func (bdb *BadgerDatabase) Path() string {
	return bdb.path
}

// Put puts the given key / value to the queue
func (bdb *BadgerDatabase) Put(key []byte, value []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(copyBytes(key), copyBytes(value))
	})
}

// Get returns the given key if it's present.
func (bdb *BadgerDatabase) Get(key []byte) ([]byte, error) {
	var value []byte
	err := bdb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, kvdb.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Has if the given key exists
func (bdb *BadgerDatabase) Has(key []byte) (bool, error) {
	_, err := bdb.Get(key)
	if err == kvdb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete deletes the key from the queue and database
func (bdb *BadgerDatabase) Delete(key []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(copyBytes(key))
	})
}

// Close close database instance
func (bdb *BadgerDatabase) Close() error {
	return bdb.db.Close()
}

// NewIteratorWithRange returns a iterator over [start, limit)
func (bdb *BadgerDatabase) NewIteratorWithRange(start []byte, limit []byte) kvdb.Iterator {
	return newIterator(bdb.db, nil, start, limit)
}

// NewIteratorWithPrefix returns a iterator with prefix
func (bdb *BadgerDatabase) NewIteratorWithPrefix(prefix []byte) kvdb.Iterator {
	return newIterator(bdb.db, prefix, prefix, nil)
}

// NewBatch new a batch for BadgerDatabase
func (bdb *BadgerDatabase) NewBatch() kvdb.Batch {
	return &BadgerBatch{db: bdb.db, wb: bdb.db.NewWriteBatch()}
}

// BadgerBatch define structure of batch
type BadgerBatch struct {
	db   *badger.DB
	wb   *badger.WriteBatch
	size int
}

// Put put batch
func (b *BadgerBatch) Put(key, value []byte) error {
	b.size += len(value)
	return b.wb.Set(copyBytes(key), copyBytes(value))
}

// Delete delete batch
func (b *BadgerBatch) Delete(key []byte) error {
	b.size++
	return b.wb.Delete(copyBytes(key))
}

// Write write batch
func (b *BadgerBatch) Write() error {
	err := b.wb.Flush()
	// a flushed WriteBatch cannot take more writes
	b.wb = b.db.NewWriteBatch()
	return err
}

// ValueSize value size of batch
func (b *BadgerBatch) ValueSize() int {
	return b.size
}

// Reset reset batch
func (b *BadgerBatch) Reset() {
	b.wb.Cancel()
	b.wb = b.db.NewWriteBatch()
	b.size = 0
}

// BadgerIterator adapts a badger iterator to kvdb.Iterator.
type BadgerIterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	start   []byte
	limit   []byte
	started bool
	key     []byte
	value   []byte
	err     error
}

func newIterator(db *badger.DB, prefix, start, limit []byte) *BadgerIterator {
	txn := db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	return &BadgerIterator{
		txn:   txn,
		it:    txn.NewIterator(opts),
		start: start,
		limit: limit,
	}
}

// First moves to the first key in range.
func (bi *BadgerIterator) First() bool {
	bi.started = true
	bi.it.Seek(bi.start)
	return bi.load()
}

// Next moves to the next key, or to the first key on the first call.
func (bi *BadgerIterator) Next() bool {
	if !bi.started {
		return bi.First()
	}
	if !bi.it.Valid() {
		return false
	}
	bi.it.Next()
	return bi.load()
}

func (bi *BadgerIterator) load() bool {
	bi.key, bi.value = nil, nil
	if !bi.it.Valid() {
		return false
	}
	item := bi.it.Item()
	key := item.KeyCopy(nil)
	if bi.limit != nil && bytes.Compare(key, bi.limit) >= 0 {
		return false
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		bi.err = err
		return false
	}
	bi.key, bi.value = key, value
	return true
}

func (bi *BadgerIterator) Key() []byte {
	return bi.key
}

func (bi *BadgerIterator) Value() []byte {
	return bi.value
}

func (bi *BadgerIterator) Error() error {
	return bi.err
}

// Release closes the iterator and discards its read transaction.
func (bi *BadgerIterator) Release() {
	bi.it.Close()
	bi.txn.Discard()
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
