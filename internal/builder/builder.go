package builder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vk/vkshaderc/internal/compiler"
	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/shader"
	"golang.org/x/sync/errgroup"
)

// Builder is the shader build runner.
type Builder struct {
	Strategy compiler.Strategy
	// Timeout bounds each compiler invocation. Zero means no limit.
	Timeout time.Duration
	// Workers is the maximum number of concurrent compiler processes.
	Workers int
	// NewCompiler defaults to DefaultCompilerFactory.
	NewCompiler CompilerFactory
}

// New returns a sequential Builder using strategy.
func New(strategy compiler.Strategy, timeout time.Duration) *Builder {
	return &Builder{
		Strategy:    strategy,
		Timeout:     timeout,
		Workers:     1,
		NewCompiler: DefaultCompilerFactory,
	}
}

// Run resolves the compiler, discovers shaders under root (or takes the
// manifest verbatim when it is non-nil) and compiles every job.
//
// Resolution and discovery errors are returned with a nil Result. Compile
// failures never produce an error: they are listed in Result.Failed. If ctx
// is cancelled mid-run, the jobs not yet started are recorded as failed and
// ctx.Err() is returned alongside the partial Result.
func (b *Builder) Run(ctx context.Context, root string, manifest []string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Builder.Run started.", "root", root, "manifest", manifest != nil)

	loc, err := compiler.Resolve(ctx, b.Strategy)
	if err != nil {
		return nil, err
	}

	files, err := shader.Discover(ctx, root, manifest)
	if err != nil {
		return nil, err
	}

	jobs := shader.Jobs(files)
	if dropped := len(files) - len(jobs); dropped > 0 {
		logger.Warn("Dropped duplicate shader sources.", "count", dropped)
	}
	if len(jobs) == 0 {
		logger.Warn("No shader sources found, nothing to compile.", "root", root)
		return &Result{Compiler: loc}, nil
	}

	newCompiler := b.NewCompiler
	if newCompiler == nil {
		newCompiler = DefaultCompilerFactory
	}
	c := newCompiler(loc, b.Timeout)

	logger.Info("🚀 Compiling shaders...", "jobs", len(jobs), "workers", b.workers())
	start := time.Now()

	result := &Result{Compiler: loc}
	var mu sync.Mutex
	record := func(jr JobResult) {
		mu.Lock()
		defer mu.Unlock()
		if jr.Err != nil {
			result.Failed = append(result.Failed, jr)
		} else {
			result.Succeeded = append(result.Succeeded, jr)
		}
	}

	if b.workers() <= 1 {
		for _, job := range jobs {
			record(runJob(ctx, c, job))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(b.workers())
		for _, job := range jobs {
			job := job
			g.Go(func() error {
				record(runJob(ctx, c, job))
				return nil
			})
		}
		_ = g.Wait()
	}

	sortResults(result.Succeeded)
	sortResults(result.Failed)

	for _, jr := range result.Failed {
		logger.Error("Shader failed to compile.",
			"source", jr.Job.Source.Path,
			"exit_code", jr.Outcome.ExitCode,
			"stderr", strings.TrimSpace(jr.Outcome.Stderr),
			"error", jr.Err,
		)
	}
	logger.Info("🏁 Shader compilation finished.",
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
		"duration", time.Since(start),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("shader build interrupted: %w", err)
	}
	return result, nil
}

func (b *Builder) workers() int {
	if b.Workers < 1 {
		return 1
	}
	return b.Workers
}

func runJob(ctx context.Context, c Compiler, job shader.Job) JobResult {
	if err := ctx.Err(); err != nil {
		return JobResult{Job: job, Outcome: compiler.Outcome{ExitCode: -1}, Err: err}
	}
	jobLogger := ctxlog.FromContext(ctx).With("source", job.Source.Path, "stage", job.Source.Stage.String())
	jobLogger.Debug("Compiling shader.")

	outcome, err := c.Compile(ctx, job)
	if err == nil {
		jobLogger.Info("Compiled shader.", "output", job.Output)
	}
	return JobResult{Job: job, Outcome: outcome, Err: err}
}
