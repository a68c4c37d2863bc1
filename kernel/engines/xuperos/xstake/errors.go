package xstake

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
)

// 合约错误, Code 前三位即对应的http状态码
var (
	ErrUnauthorized        = &common.Error{Status: common.ErrStatusRefused, Code: 40101, Msg: "Unauthorized"}
	ErrPermissionDenied    = &common.Error{Status: common.ErrStatusRefused, Code: 40301, Msg: "Permission Denied"}
	ErrInvalidAmount       = &common.Error{Status: common.ErrStatusRefused, Code: 40011, Msg: "Invalid amount, amount should be greater than zero"}
	ErrInsufficientFunds   = &common.Error{Status: common.ErrStatusRefused, Code: 40012, Msg: "Insufficient funds"}
	ErrSubtractionOverflow = &common.Error{Status: common.ErrStatusRefused, Code: 40013, Msg: "Subtraction overflow"}
	ErrDecode              = &common.Error{Status: common.ErrStatusRefused, Code: 40014, Msg: "Decode failed"}
	ErrInvalidConfig       = &common.Error{Status: common.ErrStatusRefused, Code: 40015, Msg: "Invalid config"}
	ErrNotFound            = &common.Error{Status: common.ErrStatusRefused, Code: 40402, Msg: "Not found"}
	ErrNotImplemented      = &common.Error{Status: common.ErrStatusInternalErr, Code: 50101, Msg: "Not implemented"}
	ErrAlreadyInitialized  = &common.Error{Status: common.ErrStatusRefused, Code: 40902, Msg: "Contract already instantiated"}
	// host surfaced errors: address validation, storage, serialization
	ErrStd = &common.Error{Status: common.ErrStatusInternalErr, Code: 50021, Msg: "Std error"}
)

// PermissionDeniedError is returned when a non-owner tries to change the config.
type PermissionDeniedError struct {
	Addr string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("Permission Denied: %s does not have the permissions to change contract config", e.Addr)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}

func stdError(err error, format string, args ...interface{}) error {
	return errors.Wrapf(ErrStd, "%s: %v", fmt.Sprintf(format, args...), err)
}

func decodeError(err error, format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecode, "%s: %v", fmt.Sprintf(format, args...), err)
}
