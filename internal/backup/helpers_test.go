package backup

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/manifest"
)

// start is the frozen time used by the test clock.
var start = time.Date(2024, time.March, 5, 14, 7, 9, 123456700, time.Local)

func newClock() *testclock.Clock {
	return testclock.NewClock(start)
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  slog.LevelDebug,
		Format: logging.FormatText,
		Output: buf,
	})
}

// makeSource creates dir/<name> holding the given files and returns its path.
func makeSource(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

// entry parses a single manifest line and resolves it against configDir.
func entry(t *testing.T, configDir, format string, args ...any) manifest.Entry {
	t.Helper()
	m, err := manifest.Parse([]string{fmt.Sprintf(format, args...)})
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	return m.Resolve(configDir).Entries()[0]
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	items, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name())
	}
	return names
}
