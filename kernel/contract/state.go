package contract

import (
	"github.com/xuperchain/xstake/kernel/ledger"
)

// Iterator iterates over key/value pairs in key order
type Iterator interface {
	// Key returns the key inside the selected bucket
	Key() []byte
	Value() []byte
	Next() bool
	Error() error
	// Iterator 必须在使用完毕后关闭
	Close()
}

// XMState 对合约暴露对XModel的读写接口，不同于XMReader，
// Get和Select方法得到的不是VersionedData，而是[]byte
type XMState interface {
	Get(bucket string, key []byte) ([]byte, error)
	// 扫描一个bucket中所有的kv, 调用者可以设置key区间[startKey, endKey)
	Select(bucket string, startKey []byte, endKey []byte) (Iterator, error)
	Put(bucket string, key, value []byte) error
	Del(bucket string, key []byte) error
}

// StateSandbox 在沙盒环境里面执行状态修改操作，最终生成读写集
type StateSandbox interface {
	XMState
	RWSet() *RWSet
}

type RWSet struct {
	RSet []*ledger.VersionedData
	WSet []*ledger.PureData
}
