package cli

import (
	"fmt"
	"os"

	"github.com/annolab/margin/errors"
)

// ErrorHandler provides user-friendly error messages.
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle prints a friendly message for known error codes and returns the
// error unchanged so callers keep their exit status.
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "Configuration not found. Run 'margin init' to create one.\n")
		return err

	case errors.ErrCodeNotFound:
		if marginErr, ok := err.(*errors.MarginError); ok {
			if target, present := marginErr.Details["target"]; present {
				fmt.Fprintf(os.Stderr, "No threads found for '%v'\n", target)
				fmt.Fprintf(os.Stderr, "Run 'margin targets' to see annotated files.\n")
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "Not found: %v\n", err)
		return err

	case errors.ErrCodeAlreadyRunning:
		if marginErr, ok := err.(*errors.MarginError); ok {
			fmt.Fprintf(os.Stderr, "Bridge already running with PID %v\n", marginErr.Details["pid"])
			fmt.Fprintf(os.Stderr, "Stop it first, or remove a stale pid file.\n")
		}
		return err

	case errors.ErrCodeUserLookup:
		fmt.Fprintf(os.Stderr, "User lookup failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Check your network and github token in margin.yml.\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if h.Verbose {
			if marginErr, ok := err.(*errors.MarginError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", marginErr.ToJSON())
			}
		}
		return err
	}
}
