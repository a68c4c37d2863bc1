package leveldb

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/xuperchain/xstake/lib/storage/kvdb"
)

const (
	defaultCacheMiB = 16
	defaultFds      = 16
)

func init() {
	kvdb.Register(kvdb.KVEngineTypeLDB, NewKVDBInstance)
	kvdb.Register(kvdb.KVEngineTypeMemory, func(param *kvdb.KVParameter) (kvdb.Database, error) {
		p := *param
		p.StorageType = kvdb.StorageTypeMemory
		return NewKVDBInstance(&p)
	})
}

// LDBDatabase define data structure of storage
type LDBDatabase struct {
	fn string
	db *leveldb.DB
}

// NewKVDBInstance opens a leveldb backed kvdb.Database.
func NewKVDBInstance(param *kvdb.KVParameter) (kvdb.Database, error) {
	baseDB := new(LDBDatabase)
	options := map[string]interface{}{
		"cache": param.GetMemCacheSize(),
		"fds":   param.GetFileHandlersCacheSize(),
	}

	var err error
	switch param.GetStorageType() {
	case kvdb.StorageTypeMemory:
		err = baseDB.OpenMem(options)
	case kvdb.StorageTypeSingle, "":
		err = baseDB.Open(param.GetDBPath(), options)
	default:
		err = fmt.Errorf("unsupported storage type:%s", param.GetStorageType())
	}
	if err != nil {
		return nil, err
	}

	return baseDB, nil
}

func setDefaultOptions(options map[string]interface{}) {
	if v, ok := options["cache"].(int); !ok || v < defaultCacheMiB {
		options["cache"] = defaultCacheMiB
	}
	if v, ok := options["fds"].(int); !ok || v < defaultFds {
		options["fds"] = defaultFds
	}
}

func buildOptions(options map[string]interface{}) *opt.Options {
	setDefaultOptions(options)
	cache := options["cache"].(int)
	fds := options["fds"].(int)
	return &opt.Options{
		OpenFilesCacheCapacity: fds,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	}
}

// Open opens an instance of LDB with parameters (ldb path and other options)
func (ldb *LDBDatabase) Open(path string, options map[string]interface{}) error {
	db, err := leveldb.OpenFile(path, buildOptions(options))
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	// (Re)check for errors and abort if opening of the db failed
	if err != nil {
		return err
	}
	ldb.fn = path
	ldb.db = db
	return nil
}

// OpenMem opens leveldb on a memory storage, used by tests and the memory engine.
func (ldb *LDBDatabase) OpenMem(options map[string]interface{}) error {
	db, err := leveldb.Open(storage.NewMemStorage(), buildOptions(options))
	if err != nil {
		return err
	}
	ldb.fn = ""
	ldb.db = db
	return nil
}

// Path returns the path to the database directory.
func (ldb *LDBDatabase) Path() string {
	return ldb.fn
}

// Put puts the given key / value to the queue
func (ldb *LDBDatabase) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Has if the given key exists
func (ldb *LDBDatabase) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

// Get returns the given key if it's present.
func (ldb *LDBDatabase) Get(key []byte) ([]byte, error) {
	dat, err := ldb.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, kvdb.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dat, nil
}

// Delete deletes the key from the queue and database
func (ldb *LDBDatabase) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

// Close close database instance
func (ldb *LDBDatabase) Close() error {
	return ldb.db.Close()
}

// NewIteratorWithRange returns a iterator over [start, limit)
func (ldb *LDBDatabase) NewIteratorWithRange(start []byte, limit []byte) kvdb.Iterator {
	keyRange := &util.Range{Start: start, Limit: limit}
	return ldb.db.NewIterator(keyRange, nil)
}

// NewIteratorWithPrefix returns a iterator with prefix
func (ldb *LDBDatabase) NewIteratorWithPrefix(prefix []byte) kvdb.Iterator {
	return ldb.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// NewBatch new a batch for LDBDatabase
func (ldb *LDBDatabase) NewBatch() kvdb.Batch {
	return &LDBBatch{db: ldb.db, b: new(leveldb.Batch)}
}

// LDBBatch define structure of batch
type LDBBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

// Put put batch
func (b *LDBBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	return nil
}

// Delete delete batch
func (b *LDBBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size++
	return nil
}

// Write write batch
func (b *LDBBatch) Write() error {
	return b.db.Write(b.b, nil)
}

// ValueSize value size of batch
func (b *LDBBatch) ValueSize() int {
	return b.size
}

// Reset reset batch
func (b *LDBBatch) Reset() {
	b.b.Reset()
	b.size = 0
}
