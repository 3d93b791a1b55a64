package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors (fatal at startup)
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrCodeRepoInvalid    ErrorCode = "REPO_INVALID"

	// Watch errors (retried, fatal only after repeated failure)
	ErrCodeWatchFailed      ErrorCode = "WATCH_FAILED"
	ErrCodeWatchResubscribe ErrorCode = "WATCH_RESUBSCRIBE"

	// Delegate errors (always recovered via template fallback)
	ErrCodeDelegateTimeout ErrorCode = "DELEGATE_TIMEOUT"
	ErrCodeDelegateAuth    ErrorCode = "DELEGATE_AUTH"
	ErrCodeDelegateFailed  ErrorCode = "DELEGATE_FAILED"

	// Version-control errors (reported, pipeline keeps watching)
	ErrCodeGitStageFailed  ErrorCode = "GIT_STAGE_FAILED"
	ErrCodeGitCommitFailed ErrorCode = "GIT_COMMIT_FAILED"
	ErrCodeGitPushFailed   ErrorCode = "GIT_PUSH_FAILED"
	ErrCodeGitLocked       ErrorCode = "GIT_LOCKED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error represents a structured error with context
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *Error) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a structured Error
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific code
func Is(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, unwrapping as needed
func GetCode(err error) ErrorCode {
	for err != nil {
		if serr, ok := err.(*Error); ok {
			return serr.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = unwrapper.Unwrap()
	}
	return ""
}

// IsFatal reports whether an error should terminate the process rather than
// return the pipeline to Idle.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeRepoInvalid,
		ErrCodeWatchFailed, ErrCodeWatchResubscribe:
		return true
	}
	return false
}
