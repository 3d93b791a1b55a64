package openrouter

import (
	"fmt"
	"time"
)

// AuthError means the API key was rejected. Never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("openrouter authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// TimeoutError means the request exceeded its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("openrouter request timed out after %s", e.Timeout)
}

// ParseError means the response body was not a usable chat completion.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("openrouter response unparseable: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// APIError carries a non-auth HTTP failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openrouter request failed (status %d): %s", e.StatusCode, e.Message)
}
