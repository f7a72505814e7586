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

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Environment errors
	ErrPackageInstalled        ErrorCode = "PACKAGE_INSTALLED"
	ErrNotAnEnv                ErrorCode = "NOT_AN_ENV"
	ErrPackageNotInstalled     ErrorCode = "PACKAGE_NOT_INSTALLED"
	ErrPackageMissingInEnvFile ErrorCode = "PACKAGE_MISSING_IN_ENV_FILE"

	// Metadata errors
	ErrNoPackageMetadata ErrorCode = "NO_PACKAGE_METADATA"
	ErrBadMetadata       ErrorCode = "BAD_METADATA"
	ErrNoMetadata        ErrorCode = "NO_METADATA"

	// Backend errors
	ErrBackendCommand      ErrorCode = "BACKEND_COMMAND"
	ErrBackendNotFound     ErrorCode = "BACKEND_NOT_FOUND"
	ErrUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrDownload            ErrorCode = "DOWNLOAD"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// DetailExitCode is the detail key holding a backend process exit code.
const DetailExitCode = "exit_code"

// exitCodes maps error codes to process exit statuses. Codes not listed exit with 1.
var exitCodes = map[ErrorCode]int{
	ErrPackageNotInstalled:     21,
	ErrPackageMissingInEnvFile: 22,
	ErrUnsupportedPlatform:     30,
	ErrBackendCommand:          40,
	ErrBackendNotFound:         41,
	ErrDownload:                42,
	ErrPackageInstalled:        101,
	ErrNotAnEnv:                102,
	ErrBadMetadata:             103,
	ErrNoPackageMetadata:       201,
	ErrNoMetadata:              302,
}

// CondaxError represents a structured error with code and details
type CondaxError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CondaxError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CondaxError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CondaxError) Is(target error) bool {
	var targetErr *CondaxError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CondaxError with the given code and message
func New(code ErrorCode, message string) *CondaxError {
	return &CondaxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CondaxError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CondaxError {
	return &CondaxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CondaxError
func Wrap(err error, code ErrorCode, message string) *CondaxError {
	if err == nil {
		return nil
	}
	return &CondaxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CondaxError {
	if err == nil {
		return nil
	}
	return &CondaxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CondaxError) WithDetail(key string, value interface{}) *CondaxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var condaxErr *CondaxError
	if errors.As(err, &condaxErr) {
		return condaxErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CondaxError
func GetErrorCode(err error) ErrorCode {
	var condaxErr *CondaxError
	if errors.As(err, &condaxErr) {
		return condaxErr.Code
	}
	return ErrUnknown
}

// BackendCommand reports a backend executable that exited with a non-zero status.
func BackendCommand(exe string, exitCode int, err error) *CondaxError {
	e := &CondaxError{
		Code:    ErrBackendCommand,
		Message: fmt.Sprintf("%s exited with code %d", exe, exitCode),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
	return e.WithDetail(DetailExitCode, exitCode)
}

// BackendExitCode returns the exit code carried by a BACKEND_COMMAND error.
func BackendExitCode(err error) (int, bool) {
	var condaxErr *CondaxError
	if !errors.As(err, &condaxErr) || condaxErr.Code != ErrBackendCommand {
		return 0, false
	}
	code, ok := condaxErr.Details[DetailExitCode].(int)
	return code, ok
}

// ExitCode returns the process exit status for err. nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[GetErrorCode(err)]; ok {
		return code
	}
	return 1
}
