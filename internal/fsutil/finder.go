// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// MatchFunc reports whether a regular file at the given forward-slash path
// should be returned by FindFiles.
type MatchFunc func(path string, d fs.DirEntry) bool

// FindFiles recursively walks rootPath and returns every regular file
// accepted by match. Hidden files and directories are not skipped. Paths are
// returned with forward slashes and sorted lexically. Directories listed in
// skipDirs (compared after slash normalization) are not descended into.
func FindFiles(rootPath string, match MatchFunc, skipDirs ...string) ([]string, error) {
	if match == nil {
		panic("match must not be nil")
	}

	skip := make(map[string]struct{}, len(skipDirs))
	for _, dir := range skipDirs {
		skip[ToSlash(filepath.Clean(dir))] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		slashed := ToSlash(path)
		if d.IsDir() {
			if _, ok := skip[slashed]; ok && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if match(slashed, d) {
			files = append(files, slashed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// FindFilesByExtension recursively searches the given root path for all files
// whose extension, compared case-insensitively, is one of extensions.
func FindFilesByExtension(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		if ext == "" {
			panic("extension must not be empty")
		}
		set[strings.ToLower(ext)] = struct{}{}
	}

	return FindFiles(rootPath, func(path string, _ fs.DirEntry) bool {
		_, ok := set[strings.ToLower(filepath.Ext(path))]
		return ok
	})
}

// ToSlash normalizes both Windows and host separators to forward slashes.
func ToSlash(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}
