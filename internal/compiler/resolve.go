package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/fsutil"
)

// DefaultName is the base name of the reference GLSL compiler.
const DefaultName = "glslangValidator"

// DefaultAnchor is the directory name that marks the repository root.
const DefaultAnchor = "VulkanTutorials"

// Location is a resolved, executable compiler path.
type Location struct {
	Path string
	// Strategy names the strategy that produced the path.
	Strategy string
}

// Strategy locates the compiler executable.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context) (Location, error)
}

// Resolve runs strategy and wraps any failure in a ResolutionError.
func Resolve(ctx context.Context, strategy Strategy) (Location, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving compiler.", "strategy", strategy.Name())

	loc, err := strategy.Resolve(ctx)
	if err != nil {
		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			return Location{}, err
		}
		return Location{}, &ResolutionError{Strategy: strategy.Name(), Err: err}
	}

	logger.Info("Compiler resolved.", "path", loc.Path, "strategy", loc.Strategy)
	return loc, nil
}

// RepositoryRoot returns the prefix of workDir up to and including the first
// occurrence of anchor, with forward slashes.
func RepositoryRoot(workDir, anchor string) (string, error) {
	if anchor == "" {
		return "", fmt.Errorf("%w: empty anchor", ErrAnchorNotFound)
	}
	wd := fsutil.ToSlash(workDir)
	idx := strings.Index(wd, anchor)
	if idx < 0 {
		return "", fmt.Errorf("%w: %q not in %q", ErrAnchorNotFound, anchor, wd)
	}
	return wd[:idx] + anchor, nil
}

// PlatformPath finds the compiler bundled in the repository under
// external/vulkan/<platform>/bin.
type PlatformPath struct {
	WorkDir  string
	Anchor   string
	Platform Platform
}

// Name implements Strategy.
func (s PlatformPath) Name() string { return "platform" }

// Resolve implements Strategy.
func (s PlatformPath) Resolve(_ context.Context) (Location, error) {
	root, err := RepositoryRoot(s.WorkDir, s.Anchor)
	if err != nil {
		return Location{}, err
	}
	rel, err := s.Platform.bundledPath()
	if err != nil {
		return Location{}, err
	}
	path := root + "/" + rel
	if err := checkExecutable(path); err != nil {
		return Location{}, err
	}
	return Location{Path: path, Strategy: s.Name()}, nil
}

// SearchPath looks for the compiler in each directory of an executable
// search path list, in order.
type SearchPath struct {
	// PathList is a list in the form of $PATH.
	PathList string
	Platform Platform
	// Executable is the base name; DefaultName when empty.
	Executable string
}

// Name implements Strategy.
func (s SearchPath) Name() string { return "path" }

// Resolve implements Strategy. The first directory holding an executable
// candidate wins.
func (s SearchPath) Resolve(ctx context.Context) (Location, error) {
	logger := ctxlog.FromContext(ctx)

	base := s.Executable
	if base == "" {
		base = DefaultName
	}
	exe := s.Platform.ExecutableName(base)

	for _, dir := range filepath.SplitList(s.PathList) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, exe)
		if err := checkExecutable(candidate); err != nil {
			logger.Debug("Compiler candidate rejected.", "candidate", candidate, "reason", err)
			continue
		}
		return Location{Path: fsutil.ToSlash(candidate), Strategy: s.Name()}, nil
	}
	return Location{}, fmt.Errorf("%w: %s on search path", ErrNotFound, exe)
}

// Explicit uses a caller-supplied compiler path.
type Explicit struct {
	Path string
}

// Name implements Strategy.
func (s Explicit) Name() string { return "explicit" }

// Resolve implements Strategy.
func (s Explicit) Resolve(_ context.Context) (Location, error) {
	if s.Path == "" {
		return Location{}, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if err := checkExecutable(s.Path); err != nil {
		return Location{}, err
	}
	return Location{Path: fsutil.ToSlash(s.Path), Strategy: s.Name()}, nil
}

// checkExecutable requires path to be an existing regular file. Outside
// Windows at least one execute bit must also be set.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrNotExecutable, path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrNotExecutable, path)
	}
	return nil
}
