package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/scribe/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle prints a user-facing message for the error and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Run 'scribe setup' to create one.\n")

	case errors.ErrCodeConfigInvalid:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)

	case errors.ErrCodeRepoInvalid:
		if serr, ok := err.(*errors.Error); ok {
			fmt.Fprintf(os.Stderr, "❌ '%v' is not a git repository. Run 'git init' first.\n", serr.Details["path"])
		} else {
			fmt.Fprintf(os.Stderr, "❌ Not a git repository.\n")
		}

	case errors.ErrCodeGitLocked:
		if serr, ok := err.(*errors.Error); ok {
			fmt.Fprintf(os.Stderr, "❌ Git index is locked. If no other git process is running, delete %v\n",
				serr.Details["lockFile"])
		} else {
			fmt.Fprintf(os.Stderr, "❌ Git index is locked.\n")
		}

	case errors.ErrCodeGitPushFailed:
		fmt.Fprintf(os.Stderr, "❌ Push failed. Check the remote configuration and your access.\n")

	case errors.ErrCodeWatchFailed, errors.ErrCodeWatchResubscribe:
		fmt.Fprintf(os.Stderr, "❌ Filesystem monitoring failed: %v\n", err)

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
	}

	if h.Verbose {
		if serr, ok := err.(*errors.Error); ok {
			fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", serr.ToJSON())
		}
	}
	return err
}
