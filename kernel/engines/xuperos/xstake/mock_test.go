package xstake

import (
	"bytes"
	"errors"
	"sort"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
)

type FakeKContext struct {
	args      map[string][]byte
	data      map[string]map[string][]byte
	initiator string
	blockTime uint64
}

func NewFakeKContext(args map[string][]byte, data map[string]map[string][]byte) *FakeKContext {
	return &FakeKContext{
		args:      args,
		data:      data,
		initiator: "creator",
	}
}

// with sets the caller, block time and msg of the next invocation.
func (c *FakeKContext) with(initiator string, now uint64, msg []byte) *FakeKContext {
	c.initiator = initiator
	c.blockTime = now
	c.args = map[string][]byte{common.ArgMsg: msg}
	return c
}

func (c *FakeKContext) Args() map[string][]byte {
	return c.args
}

func (c *FakeKContext) Initiator() string {
	return c.initiator
}

func (c *FakeKContext) BlockTime() uint64 {
	return c.blockTime
}

func (c *FakeKContext) ContractName() string {
	return XStakeContract
}

func (c *FakeKContext) AddrValidate(addr string) error {
	if addr == "" || addr != string(bytes.ToLower([]byte(addr))) {
		return errors.New("invalid address")
	}
	return nil
}

func (c *FakeKContext) RWSet() *contract.RWSet {
	return nil
}

func (c *FakeKContext) Get(bucket string, key []byte) ([]byte, error) {
	if _, ok := c.data[bucket]; !ok {
		return nil, nil
	}
	return c.data[bucket][string(key)], nil
}

func (c *FakeKContext) Select(bucket string, startKey []byte, endKey []byte) (contract.Iterator, error) {
	iter := newFakeIterator(c.data, bucket, startKey, endKey)
	return iter, nil
}

func (c *FakeKContext) Put(bucket string, key, value []byte) error {
	if _, ok := c.data[bucket]; !ok {
		c.data[bucket] = make(map[string][]byte)
	}
	c.data[bucket][string(key)] = value
	return nil
}

func (c *FakeKContext) Del(bucket string, key []byte) error {
	if _, ok := c.data[bucket]; !ok {
		return nil
	}
	delete(c.data[bucket], string(key))
	return nil
}

// snapshot deep copies the stored data.
func (c *FakeKContext) snapshot() map[string]map[string][]byte {
	cp := make(map[string]map[string][]byte, len(c.data))
	for b, kv := range c.data {
		cp[b] = make(map[string][]byte, len(kv))
		for k, v := range kv {
			cp[b][k] = append([]byte(nil), v...)
		}
	}
	return cp
}

type fakeIterator struct {
	keys  []string
	data  map[string][]byte
	index int
}

func newFakeIterator(data map[string]map[string][]byte, bucket string, start, end []byte) *fakeIterator {
	kv := data[bucket]
	keys := make([]string, 0, len(kv))
	for k := range kv {
		if bytes.Compare([]byte(k), start) < 0 {
			continue
		}
		if end != nil && bytes.Compare([]byte(k), end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &fakeIterator{keys: keys, data: kv, index: -1}
}

func (i *fakeIterator) Key() []byte {
	return []byte(i.keys[i.index])
}

func (i *fakeIterator) Value() []byte {
	return i.data[i.keys[i.index]]
}

func (i *fakeIterator) Next() bool {
	i.index++
	return i.index < len(i.keys)
}

func (i *fakeIterator) Error() error {
	return nil
}

func (i *fakeIterator) Close() {}
