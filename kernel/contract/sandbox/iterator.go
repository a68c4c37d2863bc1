package sandbox

import (
	"bytes"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/ledger"
)

// multiIterator 按照归并排序合并两个XMIterator
// 如果两个XMIterator在某次迭代返回同样的Key，选取front的Value
type multiIterator struct {
	front ledger.XMIterator
	back  ledger.XMIterator

	started    bool
	frontValid bool
	backValid  bool

	key   []byte
	value *ledger.VersionedData
}

func newMultiIterator(front, back ledger.XMIterator) ledger.XMIterator {
	return &multiIterator{
		front: front,
		back:  back,
	}
}

func (m *multiIterator) Key() []byte {
	return m.key
}

func (m *multiIterator) Value() *ledger.VersionedData {
	return m.value
}

func (m *multiIterator) Next() bool {
	if !m.started {
		m.started = true
		m.frontValid = m.front.Next()
		m.backValid = m.back.Next()
	} else {
		// advance whichever side produced the current key
		switch compareBytes(m.frontKey(), m.backKey()) {
		case 0:
			m.frontValid = m.front.Next()
			m.backValid = m.back.Next()
		case -1:
			m.frontValid = m.front.Next()
		case 1:
			m.backValid = m.back.Next()
		}
	}

	if !m.frontValid && !m.backValid {
		m.key, m.value = nil, nil
		return false
	}
	switch compareBytes(m.frontKey(), m.backKey()) {
	case 0, -1:
		m.setKeyValue(m.front)
	case 1:
		m.setKeyValue(m.back)
	}
	return true
}

func (m *multiIterator) frontKey() []byte {
	if !m.frontValid {
		return nil
	}
	return m.front.Key()
}

func (m *multiIterator) backKey() []byte {
	if !m.backValid {
		return nil
	}
	return m.back.Key()
}

func (m *multiIterator) setKeyValue(iter ledger.XMIterator) {
	m.key = iter.Key()
	m.value = iter.Value()
}

func (m *multiIterator) Error() error {
	err := m.front.Error()
	if err != nil {
		return err
	}
	return m.back.Error()
}

// Iterator 必须在使用完毕后关闭
func (m *multiIterator) Close() {
	m.front.Close()
	m.back.Close()
}

// rsetIterator 把迭代到的Key记录到读集里面
type rsetIterator struct {
	mc *XMCache
	ledger.XMIterator
	err error
}

func newRsetIterator(iter ledger.XMIterator, mc *XMCache) ledger.XMIterator {
	return &rsetIterator{
		mc:         mc,
		XMIterator: iter,
	}
}

func (r *rsetIterator) Next() bool {
	if r.err != nil {
		return false
	}
	ok := r.XMIterator.Next()
	if !ok {
		return false
	}
	bucket, key, err := parseRawKey(r.Key())
	if err != nil {
		r.err = err
		return false
	}
	// fill read set
	r.mc.fillInputsCache(bucket, key, r.Value())
	return true
}

func (r *rsetIterator) Error() error {
	if r.err != nil {
		return r.err
	}
	return r.XMIterator.Error()
}

// ContractIterator 把ledger.XMIterator转换成contract.Iterator
type ContractIterator struct {
	ledger.XMIterator
}

func newContractIterator(xmiter ledger.XMIterator) contract.Iterator {
	return &ContractIterator{
		XMIterator: xmiter,
	}
}

// Key strips the bucket from the raw key.
func (c *ContractIterator) Key() []byte {
	v := c.XMIterator.Value()
	if v == nil {
		return nil
	}
	return v.GetPureData().GetKey()
}

func (c *ContractIterator) Value() []byte {
	v := c.XMIterator.Value()
	if v == nil {
		return nil
	}
	return v.GetPureData().GetValue()
}

// stripDelIterator 从迭代器里剔除删除标注和空版本
type stripDelIterator struct {
	ledger.XMIterator
}

func newStripDelIterator(xmiter ledger.XMIterator) ledger.XMIterator {
	return &stripDelIterator{
		XMIterator: xmiter,
	}
}

func (s *stripDelIterator) Next() bool {
	for s.XMIterator.Next() {
		v := s.Value()
		if IsEmptyVersionedData(v) {
			continue
		}
		if IsDelFlag(v.PureData.Value) {
			continue
		}
		return true
	}
	return false
}

// sliceIterator iterates over a snapshot, so the source may change while it is in use.
type sliceIterator struct {
	keys   [][]byte
	values []*ledger.VersionedData
	idx    int
}

func newSliceIterator(iter ledger.XMIterator) ledger.XMIterator {
	defer iter.Close()
	s := &sliceIterator{idx: -1}
	for iter.Next() {
		s.keys = append(s.keys, iter.Key())
		s.values = append(s.values, iter.Value())
	}
	return s
}

func (s *sliceIterator) Next() bool {
	if s.idx < len(s.keys) {
		s.idx++
	}
	return s.idx < len(s.keys)
}

func (s *sliceIterator) Key() []byte {
	if s.idx < 0 || s.idx >= len(s.keys) {
		return nil
	}
	return s.keys[s.idx]
}

func (s *sliceIterator) Value() *ledger.VersionedData {
	if s.idx < 0 || s.idx >= len(s.values) {
		return nil
	}
	return s.values[s.idx]
}

func (s *sliceIterator) Error() error {
	return nil
}

func (s *sliceIterator) Close() {
	s.keys, s.values = nil, nil
}

// compareBytes like bytes.Compare but treats nil as max value
func compareBytes(k1, k2 []byte) int {
	if k1 == nil && k2 == nil {
		return 0
	}
	if k1 == nil {
		return 1
	}
	if k2 == nil {
		return -1
	}
	return bytes.Compare(k1, k2)
}
