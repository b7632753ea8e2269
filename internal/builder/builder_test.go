package builder_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/vkshaderc/internal/builder"
	"github.com/vk/vkshaderc/internal/compiler"
	"github.com/vk/vkshaderc/internal/shader"
	"github.com/vk/vkshaderc/internal/testutil"
)

// stubStrategy resolves to a fixed location without touching the filesystem.
type stubStrategy struct {
	loc compiler.Location
	err error
}

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Resolve(context.Context) (compiler.Location, error) {
	return s.loc, s.err
}

// recordingCompiler fails jobs whose source ends with one of failSuffixes and
// remembers every job it was asked to compile.
type recordingCompiler struct {
	mu           sync.Mutex
	calls        []string
	failSuffixes []string
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32
	delay        time.Duration
}

func (c *recordingCompiler) Compile(_ context.Context, job shader.Job) (compiler.Outcome, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		cur := c.maxInFlight.Load()
		if n <= cur || c.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(c.delay)

	c.mu.Lock()
	c.calls = append(c.calls, job.Source.Path)
	c.mu.Unlock()

	for _, suffix := range c.failSuffixes {
		if strings.HasSuffix(job.Source.Path, suffix) {
			return compiler.Outcome{ExitCode: 1, Stderr: "ERROR: boom"},
				&compiler.CompileError{Job: job, ExitCode: 1, Stderr: "ERROR: boom"}
		}
	}
	return compiler.Outcome{}, nil
}

func newStubBuilder(c *recordingCompiler, workers int) *builder.Builder {
	b := builder.New(stubStrategy{loc: compiler.Location{Path: "/fake/glslangValidator", Strategy: "stub"}}, 0)
	b.Workers = workers
	b.NewCompiler = func(compiler.Location, time.Duration) builder.Compiler { return c }
	return b
}

func TestRun_FailingJobDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rc := &recordingCompiler{failSuffixes: []string{"b.comp"}}
	b := newStubBuilder(rc, 1)
	manifest := []string{"a.vert", "b.comp", "c.frag"}
	ctx, logs := testutil.LoggedContext(t)

	// --- Act ---
	result, err := b.Run(ctx, "", manifest)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, manifest, rc.calls, "sequential runs follow discovery order")
	require.Equal(t, []string{"b.comp"}, result.FailedPaths())
	require.Equal(t, []string{"a.vert", "c.frag"}, result.SucceededPaths())
	require.False(t, result.OK())
	require.Contains(t, logs.String(), "Shader failed to compile.")
	require.Contains(t, logs.String(), "source=b.comp")
}

func TestRun_ResolutionFailureCompilesNothing(t *testing.T) {
	t.Parallel()

	rc := &recordingCompiler{}
	b := newStubBuilder(rc, 1)
	b.Strategy = stubStrategy{err: compiler.ErrNotFound}

	result, err := b.Run(context.Background(), "", []string{"a.vert"})

	require.Nil(t, result)
	var resErr *compiler.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Empty(t, rc.calls)
}

func TestRun_DiscoveryFailureIsFatal(t *testing.T) {
	t.Parallel()

	rc := &recordingCompiler{}
	b := newStubBuilder(rc, 1)

	_, err := b.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)

	var discErr *shader.DiscoveryError
	require.ErrorAs(t, err, &discErr)
	require.Empty(t, rc.calls)
}

func TestRun_DeduplicatesOutputs(t *testing.T) {
	t.Parallel()

	rc := &recordingCompiler{}
	b := newStubBuilder(rc, 4)

	result, err := b.Run(context.Background(), "", []string{"a.vert", "a.vert", "b.frag"})

	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.vert", "b.frag"}, rc.calls)
	require.Equal(t, []string{"a.vert", "b.frag"}, result.SucceededPaths())
}

func TestRun_ParallelRespectsWorkerLimit(t *testing.T) {
	t.Parallel()

	rc := &recordingCompiler{delay: 20 * time.Millisecond, failSuffixes: []string{"3.comp"}}
	b := newStubBuilder(rc, 2)
	manifest := []string{"0.vert", "1.frag", "2.geom", "3.comp", "4.tesc", "5.tese"}

	result, err := b.Run(context.Background(), "", manifest)

	require.NoError(t, err)
	require.Len(t, rc.calls, len(manifest))
	require.LessOrEqual(t, rc.maxInFlight.Load(), int32(2))
	require.Equal(t, []string{"3.comp"}, result.FailedPaths())
	require.Equal(t, []string{"0.vert", "1.frag", "2.geom", "4.tesc", "5.tese"}, result.SucceededPaths())
}

func TestRun_EmptyTree(t *testing.T) {
	t.Parallel()

	rc := &recordingCompiler{}
	b := newStubBuilder(rc, 1)

	result, err := b.Run(context.Background(), t.TempDir(), nil)

	require.NoError(t, err)
	require.True(t, result.OK())
	require.Empty(t, result.Succeeded)
	require.Equal(t, "/fake/glslangValidator", result.Compiler.Path)
}

func TestRun_CancelledContextMarksRemainingJobsFailed(t *testing.T) {
	t.Parallel()

	rc := &recordingCompiler{}
	b := newStubBuilder(rc, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := b.Run(ctx, "", []string{"a.vert", "b.frag"})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	require.Equal(t, []string{"a.vert", "b.frag"}, result.FailedPaths())
	require.Empty(t, rc.calls)
}

// TestRun_EndToEnd drives the real process wrapper against a fake
// glslangValidator found through a search path.
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteTree(t, map[string]string{
		"a.vert":          "vertex",
		"a.frag":          "fragment",
		"notes.txt":       "not a shader",
		"compute/b.comp":  "compute",
		".hidden/c.RGEN":  "raygen",
		"compute/b.comp2": "unrecognized",
	})
	toolDir := t.TempDir()
	fake := testutil.NewFakeCompiler(t, toolDir, testutil.FakeCompilerOptions{FailSuffixes: []string{"b.comp"}})
	pathList := filepath.Join(t.TempDir(), "nothing-here") + string(os.PathListSeparator) + toolDir

	b := builder.New(compiler.SearchPath{PathList: pathList, Platform: compiler.Linux}, 10*time.Second)
	ctx, _ := testutil.LoggedContext(t)

	// --- Act ---
	first, err := b.Run(ctx, root, nil)
	require.NoError(t, err)
	second, err := b.Run(ctx, root, nil)
	require.NoError(t, err)

	// --- Assert ---
	wantOK := []string{".hidden/c.RGEN", "a.frag", "a.vert"}
	if diff := cmp.Diff(wantOK, testutil.RelPaths(t, root, first.SucceededPaths())); diff != "" {
		t.Errorf("succeeded mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"compute/b.comp"}, testutil.RelPaths(t, root, first.FailedPaths()))
	require.Equal(t, first.SucceededPaths(), second.SucceededPaths(), "re-running is idempotent")

	var compileErr *compiler.CompileError
	require.True(t, errors.As(first.Failed[0].Err, &compileErr))
	require.Equal(t, 1, compileErr.ExitCode)
	require.Contains(t, first.Failed[0].Outcome.Stderr, "compilation failed")

	for _, rel := range []string{"a.vert", "a.frag", ".hidden/c.RGEN"} {
		src, err := os.ReadFile(filepath.Join(root, rel))
		require.NoError(t, err)
		out, err := os.ReadFile(filepath.Join(root, rel+".spv"))
		require.NoError(t, err)
		require.Equal(t, src, out)
	}
	require.NoFileExists(t, filepath.Join(root, "compute", "b.comp.spv"))
	require.NoFileExists(t, filepath.Join(root, "notes.txt.spv"))
	require.Len(t, fake.Invocations(t), 8, "four jobs per run, two runs")
}
