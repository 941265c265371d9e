package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors. These are global: they abort a run before any
	// filesystem mutation.
	ErrConfigLoad     ErrorCode = "CONFIG_LOAD"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrConfigConflict ErrorCode = "CONFIG_CONFLICT"
	ErrImportCycle    ErrorCode = "IMPORT_CYCLE"
	ErrUnknownProfile ErrorCode = "UNKNOWN_PROFILE"

	// Template errors, scoped to one dot
	ErrParse              ErrorCode = "PARSE"
	ErrUnresolvedVariable ErrorCode = "UNRESOLVED_VARIABLE"

	// Deployment errors, scoped to one dot
	ErrProtectedPath  ErrorCode = "PROTECTED_PATH"
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	ErrHookFailure    ErrorCode = "HOOK_FAILURE"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// DotlinkError represents a structured error with code and details
type DotlinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Coded is implemented by typed errors outside this package that still
// belong to the taxonomy (for example template parse errors).
type Coded interface {
	ErrorCode() ErrorCode
}

// Error implements the error interface
func (e *DotlinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotlinkError) Unwrap() error {
	return e.Wrapped
}

// ErrorCode implements Coded
func (e *DotlinkError) ErrorCode() ErrorCode {
	return e.Code
}

// Is implements errors.Is interface
func (e *DotlinkError) Is(target error) bool {
	var targetErr *DotlinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotlinkError with the given code and message
func New(code ErrorCode, message string) *DotlinkError {
	return &DotlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotlinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotlinkError {
	return &DotlinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotlinkError
func Wrap(err error, code ErrorCode, message string) *DotlinkError {
	if err == nil {
		return nil
	}
	return &DotlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotlinkError {
	if err == nil {
		return nil
	}
	return &DotlinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotlinkError) WithDetail(key string, value interface{}) *DotlinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}

// GetErrorCode returns the error code of the outermost coded error in the
// chain, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DotlinkError
func GetErrorDetails(err error) map[string]interface{} {
	var dotlinkErr *DotlinkError
	if errors.As(err, &dotlinkErr) {
		return dotlinkErr.Details
	}
	return nil
}

// IsGlobal reports whether the error aborts a whole run rather than a
// single dot.
func IsGlobal(err error) bool {
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrConfigParse, ErrConfigInvalid, ErrConfigConflict,
		ErrImportCycle, ErrUnknownProfile:
		return true
	}
	return false
}
