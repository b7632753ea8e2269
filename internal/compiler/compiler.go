package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/shader"
)

const pipeWaitDelay = time.Second

// Outcome is what a single compiler invocation produced.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Compiler invokes glslangValidator for one job at a time. It is safe for
// concurrent use.
type Compiler struct {
	Location Location
	// Timeout bounds each invocation. Zero means no limit.
	Timeout time.Duration
}

// New returns a Compiler for loc.
func New(loc Location, timeout time.Duration) *Compiler {
	return &Compiler{Location: loc, Timeout: timeout}
}

// Args returns the command-line arguments for job, excluding the executable.
func Args(job shader.Job) []string {
	return []string{"-V", job.Source.Path, "-o", job.Output}
}

// Compile runs `<compiler> -V <src> -o <src>.spv`. It returns a
// *CompileError when the process cannot be started, exits non-zero or runs
// past the timeout. The outcome is filled in either way.
func (c *Compiler) Compile(ctx context.Context, job shader.Job) (Outcome, error) {
	logger := ctxlog.FromContext(ctx).With("source", job.Source.Path)

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Location.Path, Args(job)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of a killed compiler may hold the output pipes open.
	cmd.WaitDelay = pipeWaitDelay

	logger.Debug("Invoking compiler.", "args", cmd.Args)
	start := time.Now()
	err := cmd.Run()
	outcome := Outcome{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		logger.Debug("Compiler finished.", "output", job.Output, "duration", outcome.Duration)
		return outcome, nil
	}

	compileErr := &CompileError{Job: job, ExitCode: -1, Stderr: outcome.Stderr}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		compileErr.Err = fmt.Errorf("compiler did not finish: %w", ctx.Err())
	case errors.As(err, &exitErr):
		compileErr.ExitCode = exitErr.ExitCode()
	default:
		compileErr.Err = fmt.Errorf("failed to start compiler: %w", err)
	}
	outcome.ExitCode = compileErr.ExitCode
	return outcome, compileErr
}
