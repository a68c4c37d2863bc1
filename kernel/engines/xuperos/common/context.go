// 统一管理系统引擎运行上下文
package common

import (
	xconf "github.com/xuperchain/xstake/kernel/common/xconfig"
	xctx "github.com/xuperchain/xstake/kernel/common/xcontext"
	engconf "github.com/xuperchain/xstake/kernel/engines/xuperos/config"
)

// 引擎运行上下文环境
type EngineCtx struct {
	// 基础上下文
	xctx.BaseCtx
	// 运行环境配置
	EnvCfg *xconf.EnvConf
	// 引擎配置
	EngCfg *engconf.EngineConf
}
