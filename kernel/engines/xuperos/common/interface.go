package common

import (
	"context"
	"encoding/json"

	"github.com/xuperchain/xstake/kernel/contract"
)

// InvokeRequest is one invocation of a kernel contract entry point.
type InvokeRequest struct {
	// 调用唯一标识, Instantiate/Execute 必填, Query 可为空
	TxID string `json:"tx_id"`
	// 经过宿主认证的调用者
	Sender string `json:"sender"`
	// 区块时间, unix seconds
	BlockTime uint64 `json:"block_time"`
	// 为空时使用默认合约
	Contract string          `json:"contract,omitempty"`
	Msg      json.RawMessage `json:"msg"`
}

// 定义xuperos引擎对外暴露接口
// 依赖接口而不是依赖具体实现
type Engine interface {
	Context() *EngineCtx
	Instantiate(ctx context.Context, req *InvokeRequest) (*contract.Response, error)
	Execute(ctx context.Context, req *InvokeRequest) (*contract.Response, error)
	Query(ctx context.Context, req *InvokeRequest) (*contract.Response, error)
	Close() error
}
