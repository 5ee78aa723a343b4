package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Module errors ---

// ModuleAlreadyLoaded reports that a module with the given identity is loaded.
func ModuleAlreadyLoaded(id string) *AppError {
	return &AppError{
		Code: ErrCodeModuleAlreadyLoaded, Message: fmt.Sprintf("Module %s is already loaded.", id),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"module": id},
	}
}

// ModuleNotLoaded reports that no module with the given identity is loaded.
func ModuleNotLoaded(id string) *AppError {
	return &AppError{
		Code: ErrCodeModuleNotLoaded, Message: fmt.Sprintf("Module %s is not loaded.", id),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"module": id},
	}
}

// ModuleLoadFailed wraps the error a module returned from its Load.
func ModuleLoadFailed(id string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeModuleLoadFailed, Message: fmt.Sprintf("Module %s failed to load.", id),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"module": id}, Cause: cause,
	}
}

// ModuleUnknown reports a module name missing from a catalog.
func ModuleUnknown(name string) *AppError {
	return &AppError{
		Code: ErrCodeModuleUnknown, Message: fmt.Sprintf("No module named %q is available.", name),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"name": name},
	}
}

// --- Binding errors ---

// BindingConflict reports a key that is already bound, naming its owner when known.
func BindingConflict(key, owner string) *AppError {
	details := map[string]any{"key": key}
	if owner != "" {
		details["owner"] = owner
	}
	return &AppError{
		Code: ErrCodeBindingConflict, Message: fmt.Sprintf("Key %s is already bound.", key),
		HTTPStatus: http.StatusConflict, Retryable: false, Details: details,
	}
}

// BindingNotFound reports a key with no binding.
func BindingNotFound(key string) *AppError {
	return &AppError{
		Code: ErrCodeBindingNotFound, Message: fmt.Sprintf("No binding registered for %s.", key),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"key": key},
	}
}

// BindingFailed wraps a constructor failure for the given key.
func BindingFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBindingFailed, Message: fmt.Sprintf("Constructor for %s failed.", key),
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Details: map[string]any{"key": key}, Cause: cause,
	}
}

// --- Configuration / internal ---

// InvalidConfig creates a new AppError for a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// HasCode reports whether err (or any error it wraps) is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}
