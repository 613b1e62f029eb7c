package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidArgument = NewError("INVALID_ARGUMENT", "invalid argument", http.StatusBadRequest)
	ErrNotFound        = NewError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrConnection      = NewError("CONNECTION_ERROR", "broker connection failed", http.StatusServiceUnavailable)
	ErrStoreWrite      = NewError("STORE_WRITE_FAILURE", "event store write failed", http.StatusInternalServerError)
	ErrInternal        = NewError("INTERNAL_ERROR", "internal error", http.StatusInternalServerError)
)

type RetryableError interface {
	error
	IsRetryable() bool
}

type FatalError interface {
	error
	IsFatal() bool
}

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the retry layer may attempt the operation
// again. Argument errors never are; connection errors always are.
func (e *Error) IsRetryable() bool {
	return e.Code != ErrInvalidArgument.Code && e.Code != ErrNotFound.Code
}

func (e *Error) IsFatal() bool {
	return !e.IsRetryable()
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

// WithDetail returns a copy with its own detail map, so the package
// sentinels stay pristine.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	err.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		err.Details[k] = v
	}
	err.Details[key] = value
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func IsInvalidArgument(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == ErrInvalidArgument.Code
	}
	return false
}

func IsNotFound(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == ErrNotFound.Code
	}
	return false
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	response := map[string]interface{}{
		"error":      appErr.Message,
		"error_code": appErr.Code,
	}

	if len(appErr.Details) > 0 {
		response["details"] = appErr.Details
	}

	return response
}
