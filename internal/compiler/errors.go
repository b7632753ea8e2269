package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/vkshaderc/internal/shader"
)

var (
	// ErrNotFound means no candidate location held an executable compiler.
	ErrNotFound = errors.New("compiler executable not found")
	// ErrAnchorNotFound means the working directory does not contain the
	// repository anchor.
	ErrAnchorNotFound = errors.New("repository anchor not found in working directory")
	// ErrUnsupportedPlatform means the host OS has no known compiler layout.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNotExecutable means the candidate exists but cannot be executed.
	ErrNotExecutable = errors.New("compiler is not an executable file")
)

// ResolutionError is returned when no compiler location could be resolved.
// It is fatal for a run: nothing is compiled.
type ResolutionError struct {
	Strategy string
	Err      error
}

// Error implements the error interface for ResolutionError.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving compiler (%s strategy): %v", e.Strategy, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// CompileError reports a failed compiler invocation for a single job.
type CompileError struct {
	Job shader.Job
	// ExitCode is -1 when the process could not be started or was killed.
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface for CompileError.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compiling %s", e.Job.Source.Path)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *CompileError) Unwrap() error {
	return e.Err
}
