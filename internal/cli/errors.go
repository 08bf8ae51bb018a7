package cli

import (
	"errors"
	"fmt"
)

// ExitError carries a process exit code through the cobra RunE chain so
// commands never call os.Exit themselves. [App.Run] unwraps it at the top
// and returns the code, which keeps every command testable in-process.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

// Error implements the error interface in the standard "exit status N"
// format.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports whether err carries an explicit exit code, unwrapping
// as needed.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
