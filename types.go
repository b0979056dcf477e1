package procrun

import (
	"errors"
	"fmt"
)

var (
	// ErrPathResolution is matched by errors returned when the working
	// directory of a Process does not exist or cannot be canonicalized.
	ErrPathResolution = errors.New("procrun: cannot resolve working directory")
	// ErrExecution is matched by errors returned when the shell could not be
	// spawned, was cancelled, or produced output that is not valid UTF-8.
	ErrExecution = errors.New("procrun: execution failed")
)

// PathError reports a working directory that could not be resolved.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("procrun: working directory %q: %v", e.Path, e.Err)
}

func (e *PathError) Is(target error) bool {
	return target == ErrPathResolution
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ExecError reports a command that could not be executed, or whose output
// could not be returned as text.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("procrun: sh -c %q: %v", e.Command, e.Err)
}

func (e *ExecError) Is(target error) bool {
	return target == ErrExecution
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

var errInvalidUTF8 = errors.New("output is not valid UTF-8")

// Result is the outcome of a command run in capture mode.
type Result struct {
	ExitCode int
	Stdout   string
}
