package common

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// 处理成功类
	ErrStatusSucc = 200
	// 拒绝处理类错误状态
	ErrStatusRefused = 400
	// 内部错误类错误状态
	ErrStatusInternalErr = 500
)

type Error struct {
	// 用于统计和监控的错误分类（类似http的2xx、4xx、5xx）
	Status int
	// 用于标识具体错误的详细错误码, 前三位即对应的http状态码
	Code int
	// 用于说明具体错误的说明信息
	Msg string
}

func CastError(err error) *Error {
	return CastErrorDefault(err, ErrUnknown)
}

// CastErrorDefault finds the *Error in err's chain, falling back to defaultErr.
func CastErrorDefault(err error, defaultErr *Error) *Error {
	if err == nil {
		return nil
	}
	var defErr *Error
	if errors.As(err, &defErr) {
		return defErr
	}

	return defaultErr.More("%s", err.Error())
}

func (t *Error) Error() string {
	return fmt.Sprintf("Err:%d-%d-%s", t.Status, t.Code, t.Msg)
}

func (t *Error) More(format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	return &Error{t.Status, t.Code, t.Msg + "+" + msg}
}

func (t *Error) Equal(rhs *Error) bool {
	if rhs == nil {
		return false
	}

	return t.Code == rhs.Code
}

// Is lets errors.Is match errors derived with More.
func (t *Error) Is(target error) bool {
	rhs, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Equal(rhs)
}

// HTTPStatus maps the detailed code to an http status code.
func (t *Error) HTTPStatus() int {
	if t == nil {
		return ErrStatusSucc
	}
	if st := t.Code / 100; st >= 400 && st < 600 {
		return st
	}
	return t.Status
}

// define std error
// 预留xxx9xx的错误码给上层业务扩展用，这里不要使用xxx9xx的错误码
var (
	ErrSuccess      = &Error{ErrStatusSucc, 0, "success"}
	ErrInternal     = &Error{ErrStatusInternalErr, 50000, "internal error"}
	ErrUnknown      = &Error{ErrStatusInternalErr, 50001, "unknown error"}
	ErrForbidden    = &Error{ErrStatusRefused, 40300, "forbidden"}
	ErrUnauthorized = &Error{ErrStatusRefused, 40100, "unauthorized"}
	ErrParameter    = &Error{ErrStatusRefused, 40001, "param error"}

	// engine
	ErrNewEngineCtxFailed = &Error{ErrStatusInternalErr, 50003, "create engine context failed"}
	ErrLoadEngConfFailed  = &Error{ErrStatusInternalErr, 50006, "load engine config failed"}
	ErrNewLogFailed       = &Error{ErrStatusInternalErr, 50007, "new logger failed"}
	ErrOpenStorageFailed  = &Error{ErrStatusInternalErr, 50008, "open storage failed"}
	ErrEngineClosed       = &Error{ErrStatusInternalErr, 50009, "engine closed"}

	// contract
	ErrContractNotFound     = &Error{ErrStatusRefused, 40401, "contract method not found"}
	ErrContractNewCtxFailed = &Error{ErrStatusInternalErr, 50010, "contract new context failed"}
	ErrContractInvokeFailed = &Error{ErrStatusInternalErr, 50011, "contract invoke failed"}
	ErrCommitFailed         = &Error{ErrStatusInternalErr, 50012, "commit rwset failed"}

	// tx
	ErrTxIdNil     = &Error{ErrStatusRefused, 40010, "tx id nil"}
	ErrTxDuplicate = &Error{ErrStatusRefused, 40901, "tx duplicate"}
)
