package http

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest  = "ERR_BAD_REQUEST"
	CodeConflict    = "ERR_CONFLICT"
	CodeUnavailable = "ERR_UNAVAILABLE"
	CodeInternal    = "ERR_INTERNAL"
)

// AppError is an error carrying the HTTP status it should be reported with.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is reports whether target is an AppError with the same code, so callers
// can match on a template such as &AppError{Code: CodeConflict}.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Field: field, Status: status}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value any) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]any, 1)
	}
	e.Params[key] = value
	return e
}

// WithError records the cause. It is logged, never sent to the client.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func BadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, "", message, http.StatusBadRequest)
}

func BadRequestErrorf(format string, a ...any) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

func ConflictError(message string) *AppError {
	return NewAppError(CodeConflict, "", message, http.StatusConflict)
}

func ServiceUnavailableError(message string) *AppError {
	return NewAppError(CodeUnavailable, "", message, http.StatusServiceUnavailable)
}

func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}

// StatusOf returns the status err should be reported with: the AppError's
// own status when err wraps one, 500 otherwise.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
