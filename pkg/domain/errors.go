package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrProgrammer is the sentinel matched by every ProgrammerError via errors.Is.
var ErrProgrammer = errors.New("programmer error")

// ProgrammerError reports misuse of the facade API, such as reading values
// before the session was opened. It signals a bug in the caller, not a runtime failure.
type ProgrammerError struct {
	Op      string // Operation that was misused (e.g. "Set")
	Message string
}

// NewProgrammerError creates a ProgrammerError for the given operation.
func NewProgrammerError(op, format string, args ...any) *ProgrammerError {
	return &ProgrammerError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func (e *ProgrammerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrProgrammer, e.Message)
}

// Is makes errors.Is(err, ErrProgrammer) true for any ProgrammerError.
func (e *ProgrammerError) Is(target error) bool {
	return target == ErrProgrammer
}

// IsProgrammerError reports whether err is (or wraps) a ProgrammerError.
func IsProgrammerError(err error) bool {
	return errors.Is(err, ErrProgrammer)
}
