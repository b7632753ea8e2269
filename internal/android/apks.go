package android

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/fsutil"
)

// DefaultAPKDir is the collection folder, relative to the root.
const DefaultAPKDir = "apks"

// CollectAPKs copies every APK under root whose path below root mentions
// "debug" into dest, flattening the directory structure. An empty dest means
// root/apks. A later APK with the same base name overwrites an earlier one;
// discovery order is lexical, so the winner is deterministic.
func CollectAPKs(ctx context.Context, root, dest string) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	root = filepath.Clean(root)
	if dest == "" {
		dest = filepath.Join(root, DefaultAPKDir)
	}
	logger.Debug("Collecting debug APKs.", "root", root, "dest", dest)

	prefix := strings.TrimSuffix(fsutil.ToSlash(root), "/") + "/"
	apks, err := fsutil.FindFiles(root, func(p string, _ fs.DirEntry) bool {
		rel := strings.TrimPrefix(p, prefix)
		return strings.HasSuffix(rel, ".apk") && strings.Contains(rel, "debug")
	}, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to find APKs under %s: %w", root, err)
	}

	report := &Report{}
	if len(apks) == 0 {
		logger.Warn("No debug APKs found.", "root", root)
		return report, nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	for _, src := range apks {
		dst := fsutil.ToSlash(filepath.Join(dest, path.Base(src)))
		if filepath.Clean(filepath.FromSlash(dst)) == filepath.Clean(filepath.FromSlash(src)) {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return report, err
		}
		logger.Debug("Copied APK.", "from", src, "to", dst)
		report.Copied = append(report.Copied, Copy{From: src, To: dst})
	}

	logger.Info("Debug APKs collected.", "count", len(report.Copied), "dest", dest)
	return report, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}
