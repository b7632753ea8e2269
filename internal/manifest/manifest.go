package manifest

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/vkshaderc/internal/fsutil"
)

// ShaderSet is one `shader_set` block: a named list of shader sources that
// usually share a directory.
type ShaderSet struct {
	Name string
	// BaseDir is the forward-slash directory relative entries are joined
	// onto. Empty means entries are used as written.
	BaseDir string
	Shaders []string
	// FilePath is the manifest file the set was declared in.
	FilePath string
}

// Paths returns the set's shader paths with BaseDir applied.
func (s *ShaderSet) Paths() []string {
	out := make([]string, 0, len(s.Shaders))
	for _, entry := range s.Shaders {
		out = append(out, joinBase(s.BaseDir, entry))
	}
	return out
}

// Manifest is the merged content of one or more manifest files.
type Manifest struct {
	Sets []*ShaderSet
}

// Paths flattens every set, in file and block order. The result is never
// nil, so an empty manifest still suppresses directory discovery.
func (m *Manifest) Paths() []string {
	out := []string{}
	for _, set := range m.Sets {
		out = append(out, set.Paths()...)
	}
	return out
}

func joinBase(base, entry string) string {
	entry = fsutil.ToSlash(entry)
	if base == "" || isAbs(entry) {
		return entry
	}
	return path.Join(base, entry)
}

func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return true
	}
	// Drive-letter paths such as C:/shaders on any host.
	return len(p) >= 3 && p[1] == ':' && p[2] == '/'
}
