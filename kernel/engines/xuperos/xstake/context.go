package xstake

import (
	"fmt"

	"github.com/xuperchain/xstake/kernel/common/xcontext"
	"github.com/xuperchain/xstake/lib/logs"
	"github.com/xuperchain/xstake/lib/timer"
)

type Context struct {
	// 基础上下文
	xcontext.BaseCtx

	// 合约数据编码
	Codec Codec
}

func NewXStakeCtx(codecName string) (*Context, error) {
	codec, err := NewCodec(codecName)
	if err != nil {
		return nil, fmt.Errorf("new xstake ctx failed because codec error. err:%v", err)
	}

	log, err := logs.NewLogger("", XStakeContract)
	if err != nil {
		return nil, fmt.Errorf("new xstake ctx failed because new logger error. err:%v", err)
	}

	ctx := new(Context)
	ctx.XLog = log
	ctx.Timer = timer.NewXTimer()
	ctx.Codec = codec
	return ctx, nil
}
