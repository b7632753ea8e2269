package android_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/vkshaderc/internal/android"
	"github.com/vk/vkshaderc/internal/testutil"
)

func TestClean_RemovesModuleFilesAndGeneratedDirs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteTree(t, map[string]string{
		"examples.iml":                         "",
		"2_Triangle/2_Triangle.iml":            "",
		"2_Triangle/build/intermediates/a.so":  "",
		"2_Triangle/.externalNativeBuild/x.ok": "",
		"2_Triangle/assets/shaders/a.vert.spv": "",
		"2_Triangle/src/main/AndroidManifest":  "keep",
		"3_OBJLoader/build":                    "a file named build",
		"3_OBJLoader/app/build/keep.txt":       "only top-level project dirs are cleaned",
		"settings.gradle":                      "keep",
	})
	ctx, logs := testutil.LoggedContext(t)

	// --- Act ---
	report, err := android.Clean(ctx, root)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{
		"2_Triangle/.externalNativeBuild",
		"2_Triangle/2_Triangle.iml",
		"2_Triangle/assets",
		"2_Triangle/build",
		"3_OBJLoader/build",
		"examples.iml",
	}, testutil.RelPaths(t, root, report.Removed))

	require.NoDirExists(t, filepath.Join(root, "2_Triangle", "build"))
	require.NoFileExists(t, filepath.Join(root, "3_OBJLoader", "build"))
	require.FileExists(t, filepath.Join(root, "2_Triangle", "src", "main", "AndroidManifest"))
	require.FileExists(t, filepath.Join(root, "3_OBJLoader", "app", "build", "keep.txt"))
	require.FileExists(t, filepath.Join(root, "settings.gradle"))
	require.Contains(t, logs.String(), "Android projects cleaned.")
}

func TestClean_IsIdempotent(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, map[string]string{"p/build/out.bin": ""})

	_, err := android.Clean(context.Background(), root)
	require.NoError(t, err)
	report, err := android.Clean(context.Background(), root)

	require.NoError(t, err)
	require.Empty(t, report.Removed)
}

func TestCollectAPKs_CopiesDebugBuildsOnly(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteTree(t, map[string]string{
		"2_Triangle/build/outputs/apk/debug/2_Triangle-debug.apk":     "triangle",
		"2_Triangle/build/outputs/apk/release/2_Triangle-release.apk": "release",
		"3_OBJLoader/build/outputs/apk/debug/3_OBJLoader-debug.apk":   "obj",
		"3_OBJLoader/build/outputs/apk/debug/output.json":             "{}",
		"apks/stale-debug.apk":                                        "already collected",
	})

	// --- Act ---
	report, err := android.CollectAPKs(context.Background(), root, "")

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Copied, 2)

	data, err := os.ReadFile(filepath.Join(root, "apks", "2_Triangle-debug.apk"))
	require.NoError(t, err)
	require.Equal(t, "triangle", string(data))
	require.FileExists(t, filepath.Join(root, "apks", "3_OBJLoader-debug.apk"))
	require.NoFileExists(t, filepath.Join(root, "apks", "2_Triangle-release.apk"))

	stale, err := os.ReadFile(filepath.Join(root, "apks", "stale-debug.apk"))
	require.NoError(t, err)
	require.Equal(t, "already collected", string(stale), "the destination is not rescanned")
}

func TestCollectAPKs_CustomDestAndNothingFound(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, map[string]string{"app/build/app-release.apk": ""})
	dest := filepath.Join(t.TempDir(), "out")

	report, err := android.CollectAPKs(context.Background(), root, dest)

	require.NoError(t, err)
	require.Empty(t, report.Copied)
	require.NoDirExists(t, dest)
}

func TestCollectAPKs_NonCanonicalRoot(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The root's own name mentions "debug"; only the path below it counts.
	root := filepath.Join(t.TempDir(), "debug-builds")
	testutil.WriteFiles(t, root, map[string]string{
		"app/build/outputs/apk/release/app-release.apk": "release",
		"app/build/outputs/apk/debug/app-debug.apk":     "debug",
	})

	// --- Act ---
	report, err := android.CollectAPKs(context.Background(), root+string(filepath.Separator)+"."+string(filepath.Separator), "")

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Copied, 1)
	require.FileExists(t, filepath.Join(root, "apks", "app-debug.apk"))
	require.NoFileExists(t, filepath.Join(root, "apks", "app-release.apk"))
}
