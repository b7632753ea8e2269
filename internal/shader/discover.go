package shader

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/fsutil"
)

// DiscoveryError reports a failed traversal of the shader root.
type DiscoveryError struct {
	Root string
	Err  error
}

// Error implements the error interface for DiscoveryError.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering shaders under %s: %v", e.Root, e.Err)
}

// Unwrap returns the underlying traversal error.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Discover returns the shader sources to compile.
//
// A non-nil manifest is returned verbatim, in order and without checking
// that the files exist; a missing file surfaces later as a compile failure.
// Otherwise root is walked recursively and every regular file with a
// recognized extension is returned, with forward-slash paths.
func Discover(ctx context.Context, root string, manifest []string) ([]File, error) {
	logger := ctxlog.FromContext(ctx)

	if manifest != nil {
		files := make([]File, 0, len(manifest))
		for _, path := range manifest {
			files = append(files, NewFile(path))
		}
		logger.Debug("Using shader manifest.", "count", len(files))
		return files, nil
	}

	logger.Debug("Walking shader root.", "root", root)
	paths, err := fsutil.FindFiles(root, func(path string, _ fs.DirEntry) bool {
		return IsShader(path)
	})
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	files := make([]File, 0, len(paths))
	for _, path := range paths {
		files = append(files, NewFile(path))
	}
	logger.Debug("Shader discovery finished.", "root", root, "count", len(files))
	return files, nil
}
