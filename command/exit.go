package command

import (
	"errors"
	"os/exec"
)

// ExitCode returns the exit status of a finished program.
// It returns 0 for a nil error and -1 when the program did not run to completion,
// such as when it could not be started or was killed by a signal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return -1
}

// Soft reports whether the exit code of the program kind is a warning
// rather than a failure. Unrar exits with 1 for non-fatal errors such as a
// damaged member in an otherwise readable archive, so whatever was
// extracted is still kept.
func Soft(k Kind, code int) bool {
	return k == UnrarTool && code == 1
}
