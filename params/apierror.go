// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/juju/mirror/rpc"
)

// Error is the type of error returned by any call to the controller API.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) ErrorCode() string {
	return e.Code
}

// GoString implements fmt.GoStringer.  It means that a *Error shows its
// contents correctly when printed with %#v.
func (e Error) GoString() string {
	return fmt.Sprintf("&params.Error{Message: %q, Code: %q}", e.Message, e.Code)
}

// The Code constants hold error codes for some kinds of error.
const (
	CodeNotFound         = "not found"
	CodeUnauthorized     = "unauthorized access"
	CodeDead             = "dead"
	CodeStopped          = "stopped"
	CodeAlreadyExists    = "already exists"
	CodeBadRequest       = "bad request"
	CodeTryAgain         = "try again"
	CodeHasAssignedUnits = "machine has assigned units"
	CodeNotImplemented   = rpc.CodeNotImplemented
)

// ErrCode returns the error code associated with
// the given error, or the empty string if there
// is none.
func ErrCode(err error) string {
	type ErrorCoder interface {
		ErrorCode() string
	}
	switch err := errors.Cause(err).(type) {
	case ErrorCoder:
		return err.ErrorCode()
	default:
		return ""
	}
}

func IsCodeNotFound(err error) bool {
	return ErrCode(err) == CodeNotFound
}

func IsCodeUnauthorized(err error) bool {
	return ErrCode(err) == CodeUnauthorized
}

func IsCodeDead(err error) bool {
	return ErrCode(err) == CodeDead
}

func IsCodeStopped(err error) bool {
	return ErrCode(err) == CodeStopped
}

func IsCodeAlreadyExists(err error) bool {
	return ErrCode(err) == CodeAlreadyExists
}

func IsCodeBadRequest(err error) bool {
	return ErrCode(err) == CodeBadRequest
}

func IsCodeTryAgain(err error) bool {
	return ErrCode(err) == CodeTryAgain
}

func IsCodeHasAssignedUnits(err error) bool {
	return ErrCode(err) == CodeHasAssignedUnits
}

func IsCodeNotImplemented(err error) bool {
	return ErrCode(err) == CodeNotImplemented
}

// TranslateRequestError converts an error returned by the rpc layer
// into a *params.Error so that callers see a single error type for
// remote failures regardless of transport.
func TranslateRequestError(err error) error {
	if err == nil {
		return nil
	}
	if rpcErr, ok := errors.Cause(err).(*rpc.RequestError); ok {
		return &Error{
			Message: rpcErr.Message,
			Code:    rpcErr.Code,
		}
	}
	return err
}
