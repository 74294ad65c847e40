package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Store errors
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodePersistence  ErrorCode = "PERSISTENCE"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Collaborator errors
	ErrCodeUserLookup ErrorCode = "USER_LOOKUP"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Bridge daemon errors
	ErrCodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"

	// General errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// MarginError represents a structured error with context
type MarginError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *MarginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MarginError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *MarginError) WithDetail(key string, value interface{}) *MarginError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *MarginError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new MarginError
func New(code ErrorCode, message string) *MarginError {
	return &MarginError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a MarginError
func Wrap(err error, code ErrorCode, message string) *MarginError {
	return &MarginError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific MarginError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	marginErr, ok := err.(*MarginError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return marginErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	marginErr, ok := err.(*MarginError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return marginErr.Code
}
