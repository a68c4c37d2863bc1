package sandbox

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/ledger"
	"github.com/xuperchain/xstake/lib/storage/kvdb"
)

const DefaultReaderCacheSize = 1024

// storedValue is the on-disk envelope of a committed value.
type storedValue struct {
	Value   []byte `cbor:"1,keyasint"`
	RefTxid []byte `cbor:"2,keyasint,omitempty"`
}

// KVReader is the committed state: an XMReader over a kvdb.Database with an
// LRU of recent point reads. Commit is the only write path.
type KVReader struct {
	db    kvdb.Database
	cache *lru.Cache
	// commits exclude each other. Callers keep readers of the touched keys
	// out while a commit runs, or the LRU may keep a stale entry.
	commitMu sync.Mutex
}

var _ ledger.XMReader = (*KVReader)(nil)

func NewKVReader(db kvdb.Database, cacheSize int) (*KVReader, error) {
	if db == nil {
		return nil, fmt.Errorf("new kv reader failed because db is nil")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultReaderCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &KVReader{db: db, cache: cache}, nil
}

// Get never fails on a missing key: it returns empty versioned data so the
// miss is recorded in the read set.
func (r *KVReader) Get(bucket string, key []byte) (*ledger.VersionedData, error) {
	rawKey := makeRawKey(bucket, key)
	if v, ok := r.cache.Get(string(rawKey)); ok {
		return v.(*ledger.VersionedData), nil
	}

	buf, err := r.db.Get(rawKey)
	if err == kvdb.ErrNotFound {
		vd := emptyVersionedData(bucket, key)
		r.cache.Add(string(rawKey), vd)
		return vd, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kvdb failed.bucket:%s,err:%v", bucket, err)
	}

	vd, err := decodeVersionedData(bucket, key, buf)
	if err != nil {
		return nil, err
	}
	r.cache.Add(string(rawKey), vd)
	return vd, nil
}

// Select streams [startKey, endKey) of bucket straight from kvdb.
func (r *KVReader) Select(bucket string, startKey []byte, endKey []byte) (ledger.XMIterator, error) {
	rawStart := makeRawKey(bucket, startKey)
	rawLimit := makeRawLimit(bucket, endKey)
	return &kvIterator{
		iter: r.db.NewIteratorWithRange(rawStart, rawLimit),
	}, nil
}

// Commit writes the write set in one batch. Values carrying DelFlag are deleted.
func (r *KVReader) Commit(rwset *contract.RWSet, txid []byte) error {
	if rwset == nil || len(rwset.WSet) == 0 {
		return nil
	}

	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	batch := r.db.NewBatch()
	touched := make([]string, 0, len(rwset.WSet))
	for _, w := range rwset.WSet {
		rawKey := makeRawKey(w.GetBucket(), w.GetKey())
		touched = append(touched, string(rawKey))
		if IsDelFlag(w.GetValue()) {
			if err := batch.Delete(rawKey); err != nil {
				return err
			}
			continue
		}
		buf, err := cbor.Marshal(&storedValue{Value: w.GetValue(), RefTxid: txid})
		if err != nil {
			return fmt.Errorf("encode stored value failed.err:%v", err)
		}
		if err := batch.Put(rawKey, buf); err != nil {
			return err
		}
	}
	err := batch.Write()
	// drop cached entries even on failure, the db may be partially written
	for _, k := range touched {
		r.cache.Remove(k)
	}
	if err != nil {
		return fmt.Errorf("write batch failed.err:%v", err)
	}
	return nil
}

func decodeVersionedData(bucket string, key, buf []byte) (*ledger.VersionedData, error) {
	var sv storedValue
	if err := cbor.Unmarshal(buf, &sv); err != nil {
		return nil, fmt.Errorf("decode stored value failed.bucket:%s,err:%v", bucket, err)
	}
	return &ledger.VersionedData{
		PureData: &ledger.PureData{
			Bucket: bucket,
			Key:    copyBytes(key),
			Value:  sv.Value,
		},
		RefTxid: sv.RefTxid,
	}, nil
}

// kvIterator adapts kvdb.Iterator to ledger.XMIterator
type kvIterator struct {
	iter  kvdb.Iterator
	key   []byte
	value *ledger.VersionedData
	err   error
}

func (ki *kvIterator) Next() bool {
	if ki.err != nil || ki.iter == nil {
		return false
	}
	if !ki.iter.Next() {
		ki.key, ki.value = nil, nil
		return false
	}
	ki.key = copyBytes(ki.iter.Key())
	bucket, key, err := parseRawKey(ki.key)
	if err != nil {
		ki.err = err
		return false
	}
	ki.value, ki.err = decodeVersionedData(bucket, key, ki.iter.Value())
	return ki.err == nil
}

func (ki *kvIterator) Key() []byte {
	return ki.key
}

func (ki *kvIterator) Value() *ledger.VersionedData {
	return ki.value
}

func (ki *kvIterator) Error() error {
	if ki.err != nil {
		return ki.err
	}
	if ki.iter == nil {
		return nil
	}
	return ki.iter.Error()
}

func (ki *kvIterator) Close() {
	if ki.iter != nil {
		ki.iter.Release()
		ki.iter = nil
	}
}
