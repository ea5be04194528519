package loans

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeAlreadyReturned   Code = "ALREADY_RETURNED"
	CodeOutOfStock        Code = "OUT_OF_STOCK"
	CodeCreateFailed      Code = "CREATE_FAILED"
	CodePersistence       Code = "PERSISTENCE_FAILURE"
	CodeInternal          Code = "INTERNAL"
)

// APIError is the only error type that leaves Service.
type APIError struct {
	Code    Code
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }
func ErrInvalidTransition(msg string) *APIError {
	return &APIError{Code: CodeInvalidTransition, Message: msg}
}
func ErrAlreadyReturned() *APIError {
	return &APIError{Code: CodeAlreadyReturned, Message: "loan has already been returned"}
}
func ErrOutOfStock() *APIError {
	return &APIError{Code: CodeOutOfStock, Message: "no copies of this book are available"}
}
func ErrCreateFailed(err error) *APIError {
	return &APIError{Code: CodeCreateFailed, Message: "could not create loan", Err: err}
}
func ErrPersistence(err error) *APIError {
	return &APIError{Code: CodePersistence, Message: "storage operation failed", Err: err}
}

// CodeOf returns the code of an *APIError in err's chain, or "" for foreign errors.
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return ""
}

// asAPIError keeps typed failures and wraps everything else as a persistence failure.
func asAPIError(err error) *APIError {
	var api *APIError
	if errors.As(err, &api) {
		return api
	}
	return ErrPersistence(err)
}

// expected reports business outcomes that are not faults of the system.
func (e *APIError) expected() bool {
	switch e.Code {
	case CodePersistence, CodeCreateFailed, CodeInternal:
		return false
	}
	return true
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeAlreadyReturned, CodeOutOfStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
