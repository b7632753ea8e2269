package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/vkshaderc/internal/app"
	"github.com/vk/vkshaderc/internal/cli"
	"github.com/vk/vkshaderc/internal/testutil"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
	require.Equal(t, 2, exitCode(err, &bytes.Buffer{}))
}

func TestRun_CompileWithExplicitCompiler(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteTree(t, map[string]string{"shaders/a.vert": "v"})
	fake := testutil.NewFakeCompiler(t, t.TempDir(), testutil.FakeCompilerOptions{})
	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}

	// --- Act ---
	err := run(context.Background(), out, logs, []string{"compile", "--root", root, "--compiler", fake.Path})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "compiled 1 of 1 shaders with "+fake.Path)
	require.FileExists(t, filepath.Join(root, "shaders", "a.vert.spv"))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "usage", err: &cli.ExitError{Code: 2, Message: "bad flag"}, want: 2},
		{name: "strict failures", err: fmt.Errorf("%w: 1 of 2", app.ErrCompileFailures), want: 3},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			errW := &bytes.Buffer{}
			require.Equal(t, tc.want, exitCode(tc.err, errW))
			if tc.err != nil {
				require.NotEmpty(t, errW.String())
			}
		})
	}
}
