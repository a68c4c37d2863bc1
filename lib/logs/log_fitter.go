package logs

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuperchain/xstake/lib/utils"
)

// reserved common keys
const (
	CommFieldLogId = "log_id"
	CommFieldPid   = "pid"
	CommFieldCall  = "call"
)

const (
	DefaultCallDepth = 4
)

// LogDriver is what the underlying log library must provide.
type LogDriver interface {
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

// Logger is a thin layer over LogDriver that assembles the common fields.
type Logger interface {
	GetLogId() string
	SetCommField(key string, value interface{})
	SetInfoField(key string, value interface{})
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

type LogFitter struct {
	logger     LogDriver
	logId      string
	pid        int
	commFields []interface{}
	infoFields []interface{}
	lck        sync.RWMutex
	callDepth  int
}

func NewLogFitter(logger LogDriver, logId string) (*LogFitter, error) {
	if logger == nil {
		return nil, fmt.Errorf("new logger param error")
	}
	if logId == "" {
		logId = utils.GenLogId()
	}

	lf := &LogFitter{
		logger:     logger,
		logId:      logId,
		pid:        os.Getpid(),
		commFields: make([]interface{}, 0),
		infoFields: make([]interface{}, 0),
		callDepth:  DefaultCallDepth,
	}

	return lf, nil
}

func (t *LogFitter) GetLogId() string {
	return t.logId
}

// SetCommField adds a field printed with every record.
func (t *LogFitter) SetCommField(key string, value interface{}) {
	if !t.isInit() || key == "" || value == nil {
		return
	}

	t.lck.Lock()
	defer t.lck.Unlock()

	t.commFields = append(t.commFields, key, value)
}

// SetInfoField adds a field printed with the next Info record only.
func (t *LogFitter) SetInfoField(key string, value interface{}) {
	if !t.isInit() || key == "" || value == nil {
		return
	}

	t.lck.Lock()
	defer t.lck.Unlock()

	t.infoFields = append(t.infoFields, key, value)
}

func (t *LogFitter) Error(msg string, ctx ...interface{}) {
	if !t.isInit() {
		return
	}
	t.logger.Error(msg, t.fmtLogger(false, ctx...)...)
}

func (t *LogFitter) Warn(msg string, ctx ...interface{}) {
	if !t.isInit() {
		return
	}
	t.logger.Warn(msg, t.fmtLogger(false, ctx...)...)
}

func (t *LogFitter) Info(msg string, ctx ...interface{}) {
	if !t.isInit() {
		return
	}
	t.logger.Info(msg, t.fmtLogger(true, ctx...)...)
}

func (t *LogFitter) Trace(msg string, ctx ...interface{}) {
	if !t.isInit() {
		return
	}
	t.logger.Trace(msg, t.fmtLogger(false, ctx...)...)
}

func (t *LogFitter) Debug(msg string, ctx ...interface{}) {
	if !t.isInit() {
		return
	}
	t.logger.Debug(msg, t.fmtLogger(false, ctx...)...)
}

func (t *LogFitter) genBaseField() []interface{} {
	fileLine, _ := utils.GetFuncCall(t.callDepth)

	comCtx := make([]interface{}, 0, 6)
	// log_id stays first so that it can be replaced
	comCtx = append(comCtx, CommFieldLogId, t.logId)
	comCtx = append(comCtx, CommFieldCall, fileLine)
	comCtx = append(comCtx, CommFieldPid, t.pid)

	return comCtx
}

func (t *LogFitter) fmtLogger(withInfo bool, ctx ...interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		last := ctx[len(ctx)-1]
		ctx = ctx[:len(ctx)-1]
		ctx = append(ctx, "unknow", last)
	}

	comCtx := t.genBaseField()
	// an explicit log_id overrides the logger's own
	if len(ctx) > 1 && fmt.Sprintf("%v", ctx[0]) == CommFieldLogId {
		comCtx[1] = ctx[1]
		ctx = ctx[2:]
	}

	t.lck.Lock()
	comCtx = append(comCtx, t.commFields...)
	if withInfo {
		comCtx = append(comCtx, t.infoFields...)
		t.infoFields = t.infoFields[:0]
	}
	t.lck.Unlock()

	return append(comCtx, ctx...)
}

func (t *LogFitter) isInit() bool {
	return t != nil && t.logger != nil
}
