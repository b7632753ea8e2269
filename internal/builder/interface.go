package builder

import (
	"context"
	"time"

	"github.com/vk/vkshaderc/internal/compiler"
	"github.com/vk/vkshaderc/internal/shader"
)

// Compiler compiles a single job. *compiler.Compiler satisfies it.
//
// Thread-safety: with Workers > 1, Compile is called concurrently for
// different jobs.
type Compiler interface {
	Compile(ctx context.Context, job shader.Job) (compiler.Outcome, error)
}

// CompilerFactory creates the Compiler for a resolved location.
type CompilerFactory func(loc compiler.Location, timeout time.Duration) Compiler

// DefaultCompilerFactory runs the real executable at loc.
func DefaultCompilerFactory(loc compiler.Location, timeout time.Duration) Compiler {
	return compiler.New(loc, timeout)
}
