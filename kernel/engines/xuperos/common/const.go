package common

import "time"

// 引擎常量配置
const (
	// 引擎名
	BCEngineName = "xuperos"

	// tx id 去重缓存清理间隔
	TxIdCacheGcTime = 180 * time.Second
)

// 合约调用的参数名
const (
	ArgMsg = "msg"
)

// 内置合约入口
const (
	MethodInstantiate = "Instantiate"
	MethodExecute     = "Execute"
	MethodQuery       = "Query"
)
