// 定义公共上下文结构，明确定义上下文结构，方便代码阅读
package xcontext

import (
	"context"
	"time"

	"github.com/xuperchain/xstake/lib/logs"
	"github.com/xuperchain/xstake/lib/timer"
)

type XContext interface {
	context.Context
	GetLog() logs.Logger
	GetTimer() *timer.XTimer
}

// BaseCtx carries the logger and timer shared by an operation. The
// context.Context part is empty until a caller needs cancellation.
type BaseCtx struct {
	XLog  logs.Logger
	Timer *timer.XTimer
}

func (t *BaseCtx) GetLog() logs.Logger {
	return t.XLog
}

func (t *BaseCtx) GetTimer() *timer.XTimer {
	return t.Timer
}

func (t *BaseCtx) Deadline() (deadline time.Time, ok bool) {
	return
}

func (t *BaseCtx) Done() <-chan struct{} {
	return nil
}

func (t *BaseCtx) Err() error {
	return nil
}

func (t *BaseCtx) Value(key interface{}) interface{} {
	return nil
}

// IsValid reports whether both logger and timer are set.
func (t *BaseCtx) IsValid() bool {
	return t != nil && t.XLog != nil && t.Timer != nil
}

// NewBaseCtx creates a BaseCtx with a fresh logger for subMod.
func NewBaseCtx(logId, subMod string) (*BaseCtx, error) {
	xlog, err := logs.NewLogger(logId, subMod)
	if err != nil {
		return nil, err
	}
	return &BaseCtx{XLog: xlog, Timer: timer.NewXTimer()}, nil
}
