package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeCompiler describes a stand-in for glslangValidator written as a shell
// script. It copies its input to its output, so results are byte-identical
// across runs, and appends each input path to a log file.
type FakeCompiler struct {
	// Path is the executable script.
	Path string
	// LogPath receives one line per invocation with the source path.
	LogPath string
}

// FakeCompilerOptions tunes the generated script.
type FakeCompilerOptions struct {
	// Name is the executable's file name. Defaults to "glslangValidator".
	Name string
	// FailSuffixes makes the script exit 1 with a message on stderr when the
	// source path ends with any of these suffixes.
	FailSuffixes []string
	// Sleep delays every invocation, e.g. "2" seconds, for timeout tests.
	Sleep string
}

// NewFakeCompiler writes an executable fake compiler into dir.
func NewFakeCompiler(t *testing.T, dir string, opts FakeCompilerOptions) *FakeCompiler {
	t.Helper()
	SkipOnWindows(t)

	name := opts.Name
	if name == "" {
		name = "glslangValidator"
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))

	logPath := filepath.Join(dir, name+".log")

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# usage: -V <src> -o <out>\n")
	b.WriteString(`[ "$1" = "-V" ] && [ "$3" = "-o" ] || { echo "bad arguments: $*" >&2; exit 2; }` + "\n")
	b.WriteString(`echo "$2" >> '` + logPath + "'\n")
	if opts.Sleep != "" {
		b.WriteString("sleep " + opts.Sleep + "\n")
	}
	for _, suffix := range opts.FailSuffixes {
		b.WriteString(`case "$2" in *` + suffix + `) echo "ERROR: $2: compilation failed" >&2; exit 1;; esac` + "\n")
	}
	b.WriteString(`[ -f "$2" ] || { echo "ERROR: cannot open file $2" >&2; exit 1; }` + "\n")
	b.WriteString(`cp "$2" "$4" || exit 1` + "\n")
	b.WriteString(`echo "$2"` + "\n")

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o755))

	return &FakeCompiler{Path: path, LogPath: logPath}
}

// Invocations returns the source paths the fake compiler was called with, in
// call order.
func (f *FakeCompiler) Invocations(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.LogPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(data))
}
