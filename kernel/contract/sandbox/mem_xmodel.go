package sandbox

import (
	"bytes"
	"errors"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/ledger"
)

// MemXModel is an ordered in-memory XMReader keyed by bucket/key.
type MemXModel struct {
	tree *redblacktree.Tree
}

var _ ledger.XMReader = (*MemXModel)(nil)

// XMReaderFromRWSet builds a reader holding exactly the read set.
func XMReaderFromRWSet(rwset *contract.RWSet) ledger.XMReader {
	m := NewMemXModel()
	for _, r := range rwset.RSet {
		m.Put(r.PureData.Bucket, r.PureData.Key, r)
	}
	return m
}

func NewMemXModel() *MemXModel {
	tree := redblacktree.NewWith(treeCompare)
	return &MemXModel{
		tree: tree,
	}
}

// 读取一个key的值，返回的value就是有版本的data
func (m *MemXModel) Get(bucket string, key []byte) (*ledger.VersionedData, error) {
	buKey := makeRawKey(bucket, key)
	v, ok := m.tree.Get(buKey)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*ledger.VersionedData), nil
}

func (m *MemXModel) Put(bucket string, key []byte, value *ledger.VersionedData) error {
	buKey := makeRawKey(bucket, key)
	m.tree.Put(buKey, value)
	return nil
}

// Len returns the number of stored keys.
func (m *MemXModel) Len() int {
	return m.tree.Size()
}

// 扫描一个bucket中所有的kv, 调用者可以设置key区间[startKey, endKey)
func (m *MemXModel) Select(bucket string, startKey []byte, endKey []byte) (ledger.XMIterator, error) {
	if endKey != nil && bytes.Compare(startKey, endKey) >= 0 {
		return nil, errors.New("bad select range")
	}
	rawStartKey := makeRawKey(bucket, startKey)
	rawEndKey := makeRawLimit(bucket, endKey)
	return newTreeIterator(m.tree, rawStartKey, rawEndKey), nil
}

// NewIterator iterates over every stored key.
func (m *MemXModel) NewIterator() ledger.XMIterator {
	return newTreeIterator(m.tree, nil, nil)
}

// treeIterator 把tree的Iterator转换成XMIterator
type treeIterator struct {
	tree    *redblacktree.Tree
	iter    *redblacktree.Iterator
	end     []byte
	started bool
}

func newTreeIterator(tree *redblacktree.Tree, start, end []byte) ledger.XMIterator {
	var (
		startNode *redblacktree.Node
		ok        bool
	)
	if start == nil {
		startNode, ok = tree.Left(), tree.Size() > 0
	} else {
		startNode, ok = tree.Ceiling(start)
	}
	if !ok {
		return new(treeIterator)
	}
	iter := tree.IteratorAt(startNode)
	return &treeIterator{
		tree: tree,
		iter: &iter,
		end:  end,
	}
}

func (t *treeIterator) Next() bool {
	if t.iter == nil {
		return false
	}
	// IteratorAt is already positioned on the start node
	if !t.started {
		t.started = true
	} else if !t.iter.Next() {
		t.iter = nil
		return false
	}
	if t.end == nil {
		return true
	}
	if t.tree.Comparator(t.iter.Key(), t.end) >= 0 {
		t.iter = nil
		return false
	}
	return true
}

func (t *treeIterator) Key() []byte {
	if t.iter == nil {
		return nil
	}
	return t.iter.Key().([]byte)
}

func (t *treeIterator) Value() *ledger.VersionedData {
	if t.iter == nil {
		return nil
	}
	return t.iter.Value().(*ledger.VersionedData)
}

func (t *treeIterator) Error() error {
	return nil
}

func (t *treeIterator) Close() {
	t.iter = nil
}

func treeCompare(a, b interface{}) int {
	ka := a.([]byte)
	kb := b.([]byte)
	return bytes.Compare(ka, kb)
}
