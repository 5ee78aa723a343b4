package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Module lifecycle errors
const (
	// ErrCodeModuleAlreadyLoaded indicates a module with the same identity is already loaded.
	ErrCodeModuleAlreadyLoaded ErrorCode = "MODULE_ALREADY_LOADED"
	// ErrCodeModuleNotLoaded indicates the module is not loaded in the kernel.
	ErrCodeModuleNotLoaded ErrorCode = "MODULE_NOT_LOADED"
	// ErrCodeModuleLoadFailed indicates a module returned an error from its Load.
	ErrCodeModuleLoadFailed ErrorCode = "MODULE_LOAD_FAILED"
	// ErrCodeModuleUnknown indicates a module name is not in the catalog.
	ErrCodeModuleUnknown ErrorCode = "MODULE_UNKNOWN"
)

// Binding errors
const (
	// ErrCodeBindingConflict indicates a key is already bound in the container.
	ErrCodeBindingConflict ErrorCode = "BINDING_CONFLICT"
	// ErrCodeBindingNotFound indicates no binding exists for a key.
	ErrCodeBindingNotFound ErrorCode = "BINDING_NOT_FOUND"
	// ErrCodeBindingFailed indicates a constructor failed while resolving a binding.
	ErrCodeBindingFailed ErrorCode = "BINDING_FAILED"
)

// Configuration and internal errors
const (
	// ErrCodeInvalidConfig indicates the configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// A failed constructor may succeed on a later resolve; nothing else retries.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeBindingFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
