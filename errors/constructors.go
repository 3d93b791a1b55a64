package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// RepoInvalid creates an invalid repository error
func RepoInvalid(path string) *Error {
	return New(ErrCodeRepoInvalid, fmt.Sprintf("not a git repository: %s", path)).
		WithDetail("path", path)
}

// IndexLocked creates an error for a stale or contended git index lock
func IndexLocked(lockFile string, attempts int) *Error {
	return New(ErrCodeGitLocked,
		fmt.Sprintf("could not obtain index lock after %d attempts; delete %s if stale", attempts, lockFile)).
		WithDetail("lockFile", lockFile).
		WithDetail("attempts", attempts)
}

// GitFailed wraps a git subprocess failure, capturing the tool's stderr text
// and exit code when available.
func GitFailed(code ErrorCode, operation string, err error, stderr string) *Error {
	serr := Wrap(err, code, fmt.Sprintf("git %s failed", operation)).
		WithDetail("operation", operation)
	if stderr != "" {
		serr = serr.WithDetail("stderr", stderr)
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		serr = serr.WithDetail("exitCode", exitErr.ExitCode())
	}
	return serr
}

// WatchResubscribe creates an error for repeated watch recovery failure
func WatchResubscribe(root string, err error) *Error {
	return Wrap(err, ErrCodeWatchResubscribe, "filesystem watch lost and could not be re-established").
		WithDetail("root", root)
}

// WatchFailed creates an unrecoverable watch error
func WatchFailed(root string, err error) *Error {
	return Wrap(err, ErrCodeWatchFailed, "filesystem monitoring failed").
		WithDetail("root", root)
}
