package backup

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/pkg/fileutil"
)

func TestExecutor_SnapshotToDefaultDestination(t *testing.T) {
	configDir := t.TempDir()
	src := makeSource(t, t.TempDir(), "Documents", map[string]string{
		"a.txt":     "alpha",
		"sub/b.txt": "bravo!",
	})
	e := entry(t, configDir, "docs = %s, default, false", src)

	exec := NewExecutor(WithClock(newClock()))
	res, err := exec.Execute(context.Background(), e)
	require.NoError(t, err)

	want := filepath.Join(configDir, "docs_05Mar2024_140709.1234567")
	assert.Equal(t, StrategySnapshot, res.Strategy)
	assert.Equal(t, want, res.Target)
	assert.Equal(t, uint64(len("alpha")+len("bravo!")), res.Bytes)

	data, err := os.ReadFile(filepath.Join(want, "Documents", "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bravo!", string(data))

	// Only the renamed snapshot remains, no staging folder.
	assert.Equal(t, []string{"docs_05Mar2024_140709.1234567"}, dirNames(t, configDir))
}

func TestExecutor_SnapshotsAreDistinctUnderFrozenClock(t *testing.T) {
	dst := t.TempDir()
	src := makeSource(t, t.TempDir(), "notes", map[string]string{"n.txt": "n"})
	e := entry(t, "", "notes = %s, %s, false", src, dst)

	exec := NewExecutor(WithClock(newClock()))
	first, err := exec.Execute(context.Background(), e)
	require.NoError(t, err)
	second, err := exec.Execute(context.Background(), e)
	require.NoError(t, err)

	assert.NotEqual(t, first.Target, second.Target)
	assert.Equal(t, SnapshotPath(dst, "notes", start.Truncate(stampResolution).Add(stampResolution)), second.Target)
	assert.Len(t, dirNames(t, dst), 2)
}

func TestExecutor_SnapshotSkipsExistingFolderName(t *testing.T) {
	dst := t.TempDir()
	src := makeSource(t, t.TempDir(), "notes", map[string]string{"n.txt": "n"})
	taken := SnapshotPath(dst, "notes", start)
	require.NoError(t, os.Mkdir(taken, 0o755))
	e := entry(t, "", "notes = %s, %s, false", src, dst)

	res, err := NewExecutor(WithClock(newClock())).Execute(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, SnapshotPath(dst, "notes", start.Add(stampResolution)), res.Target)
	assert.Empty(t, dirNames(t, taken), "existing folder must not be touched")
}

func TestExecutor_SnapshotCreatesMissingDestination(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "deep", "backups")
	src := makeSource(t, t.TempDir(), "notes", map[string]string{"n.txt": "n"})
	e := entry(t, "", "notes = %s, %s, false", src, dst)

	res, err := NewExecutor(WithClock(newClock())).Execute(context.Background(), e)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.Target, "notes", "n.txt"))
}

func TestExecutor_SnapshotOfSingleFile(t *testing.T) {
	dst := t.TempDir()
	file := filepath.Join(t.TempDir(), "todo.md")
	require.NoError(t, os.WriteFile(file, []byte("- [ ] ship"), 0o644))
	e := entry(t, "", "todo = %s, %s, false", file, dst)

	res, err := NewExecutor(WithClock(newClock())).Execute(context.Background(), e)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.Target, "todo.md"))
}

func TestExecutor_OverwriteRunsTwice(t *testing.T) {
	dst := t.TempDir()
	src := makeSource(t, t.TempDir(), "photos", map[string]string{"1.jpg": "one"})
	e := entry(t, "", "photos = %s, %s, true", src, dst)
	exec := NewExecutor(WithClock(newClock()))

	res, err := exec.Execute(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, StrategyOverwrite, res.Strategy)
	assert.Equal(t, dst, res.Target)

	// Change the copy and add a new source file.
	copied := filepath.Join(dst, "photos", "1.jpg")
	require.NoError(t, os.WriteFile(copied, []byte("edited"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "2.jpg"), []byte("two"), 0o644))

	res, err = exec.Execute(context.Background(), e)
	require.NoError(t, err, "a second overwrite run must not fail with already exists")
	assert.Equal(t, uint64(len("two")), res.Bytes)

	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data), "existing files are skipped")
	assert.FileExists(t, filepath.Join(dst, "photos", "2.jpg"))
}

func TestExecutor_LinkedSourceCopiesContents(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	for _, overwrite := range []bool{false, true} {
		t.Run(StrategyFor(manifest.Entry{Overwrite: overwrite}).String(), func(t *testing.T) {
			realDir := makeSource(t, t.TempDir(), "Documents", map[string]string{"a.txt": "alpha"})
			link := filepath.Join(t.TempDir(), "Documents")
			require.NoError(t, os.Symlink(realDir, link))
			dst := t.TempDir()
			e := entry(t, "", "docs = %s, %s, %t", link, dst, overwrite)

			res, err := NewExecutor(WithClock(newClock())).Execute(context.Background(), e)
			require.NoError(t, err)
			assert.Equal(t, uint64(len("alpha")), res.Bytes)

			copied := filepath.Join(res.Target, "Documents")
			info, err := os.Lstat(copied)
			require.NoError(t, err)
			assert.True(t, info.IsDir())

			data, err := os.ReadFile(filepath.Join(copied, "a.txt"))
			require.NoError(t, err)
			assert.Equal(t, "alpha", string(data))
		})
	}
}

func TestExecutor_RecoverableFailures(t *testing.T) {
	dst := t.TempDir()

	tests := []struct {
		name string
		line string
		kind fileutil.CopyKind
	}{
		{"empty source", "backup = , %s, true", fileutil.KindNotFound},
		{"empty source snapshot", "backup = , %s, false", fileutil.KindNotFound},
		{"missing source", "gone = /definitely/not/here, %s, false", fileutil.KindNotFound},
		{"name with separator", "a/b = /tmp, %s, false", fileutil.KindInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry(t, "", tt.line, dst)
			_, err := NewExecutor(WithClock(newClock())).Execute(context.Background(), e)
			require.Error(t, err)
			assert.Equal(t, tt.kind, fileutil.KindOf(err))
			assert.True(t, IsRecoverable(err))
			assert.Empty(t, dirNames(t, dst), "no snapshot folder may be left behind")
		})
	}
}

func TestExecutor_FailedCopyLeavesNoSnapshot(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	dst := t.TempDir()
	src := makeSource(t, t.TempDir(), "secrets", map[string]string{"ok.txt": "ok", "locked.txt": "no"})
	require.NoError(t, os.Chmod(filepath.Join(src, "locked.txt"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(src, "locked.txt"), 0o644) })
	e := entry(t, "", "secrets = %s, %s, false", src, dst)

	_, err := NewExecutor(WithClock(newClock())).Execute(context.Background(), e)
	require.Error(t, err)
	assert.Equal(t, fileutil.KindPermissionDenied, fileutil.KindOf(err))
	assert.Empty(t, dirNames(t, dst))
}

// renameFailFs fails every Rename with an error the copy primitive does not
// classify.
type renameFailFs struct {
	afero.Fs
}

func (renameFailFs) Rename(string, string) error {
	return os.ErrClosed
}

func TestExecutor_RenameFailureIsFatal(t *testing.T) {
	dst := t.TempDir()
	src := makeSource(t, t.TempDir(), "notes", map[string]string{"n.txt": "n"})
	e := entry(t, "", "notes = %s, %s, false", src, dst)

	exec := NewExecutor(WithFs(renameFailFs{afero.NewOsFs()}), WithClock(newClock()))
	_, err := exec.Execute(context.Background(), e)
	require.Error(t, err)
	assert.False(t, IsRecoverable(err))
	assert.Empty(t, dirNames(t, dst), "staging folder is removed")
}

func TestExecutor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor().Execute(ctx, manifest.Entry{Name: "x", Source: "/x", Destination: "/y"})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsRecoverable(err))
}

func TestExecutor_PlanTouchesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	exec := NewExecutor(WithFs(fsys), WithClock(newClock()))

	snap := exec.Plan(manifest.Entry{Name: "docs", Source: "/src", Destination: "/dst"})
	assert.True(t, snap.DryRun)
	assert.Equal(t, StrategySnapshot, snap.Strategy)
	assert.Equal(t, SnapshotPath("/dst", "docs", start), snap.Target)

	over := exec.Plan(manifest.Entry{Name: "docs", Source: "/src", Destination: "/dst", Overwrite: true})
	assert.Equal(t, StrategyOverwrite, over.Strategy)
	assert.Equal(t, "/dst", over.Target)

	exists, err := afero.Exists(fsys, "/dst")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSnapshotName(t *testing.T) {
	at := time.Date(2023, time.December, 31, 23, 59, 58, 900, time.UTC)
	assert.Equal(t, "docs_31Dec2023_235958.0000009", SnapshotName("docs", at))

	assert.True(t, isSnapshotOf("docs_31Dec2023_235958.0000009", "docs"))
	assert.False(t, isSnapshotOf("docs_old_31Dec2023_235958.0000009", "docs"))
	assert.False(t, isSnapshotOf("docs_notes", "docs"))
	assert.True(t, isStagingOf(".docs_partial-12345", "docs"))
	assert.False(t, isStagingOf(".docsx_partial-12345", "docs"))
}
