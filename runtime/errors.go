package runtime

import (
	"fmt"
	"strings"
)

// SpawnError reports a command that could not be launched at all, for
// example because the executable is not on PATH or the working directory
// does not exist. The command never ran.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports a command that ran and exited unsuccessfully.
//
// Stderr holds only the last chunk the process wrote to standard error,
// which may be empty.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.Code, msg)
}

func (e *ExitError) Unwrap() error { return e.Err }
