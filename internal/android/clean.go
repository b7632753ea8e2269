package android

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/fsutil"
)

// GeneratedDirs are removed from every example project directory by Clean.
var GeneratedDirs = []string{".externalNativeBuild", "assets", "build"}

// Report lists the paths an operation touched, with forward slashes.
type Report struct {
	Removed []string
	Copied  []Copy
}

// Copy is a single file copied by CollectAPKs.
type Copy struct {
	From string
	To   string
}

// Clean deletes IDE module files (*.iml) anywhere under root, then removes
// the generated build directories of each project directly below root.
// Targets that do not exist are skipped.
func Clean(ctx context.Context, root string) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Cleaning Android projects.", "root", root)

	imlFiles, err := fsutil.FindFiles(root, func(path string, _ fs.DirEntry) bool {
		return strings.HasSuffix(path, ".iml")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find .iml files under %s: %w", root, err)
	}

	report := &Report{}
	for _, path := range imlFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return report, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		logger.Debug("Removed module file.", "path", path)
		report.Removed = append(report.Removed, path)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return report, fmt.Errorf("failed to list %s: %w", root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		for _, name := range GeneratedDirs {
			target := filepath.Join(root, entry.Name(), name)
			if _, err := os.Lstat(target); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return report, fmt.Errorf("failed to inspect %s: %w", target, err)
			}
			if err := os.RemoveAll(target); err != nil {
				return report, fmt.Errorf("failed to remove %s: %w", target, err)
			}
			logger.Debug("Removed generated path.", "path", target)
			report.Removed = append(report.Removed, fsutil.ToSlash(target))
		}
	}

	sort.Strings(report.Removed)
	logger.Info("Android projects cleaned.", "removed", len(report.Removed))
	return report, nil
}
