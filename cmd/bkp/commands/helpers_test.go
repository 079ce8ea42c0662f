package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetFlags puts every package-level flag variable back to its default.
// Cobra does not reset them between Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	verbosity = 0
	quiet = false
	logFormat = "text"
	configDirFlag = ""
	runOpts = runOptions{}
	validateFormat = formatText
	sweepDryRun = false
	initWriteConfig = false
	versionJSON = false
	doctorJSON = false
	doctorAll = false

	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })
	t.Setenv(DebugEnv, "")
}

// executeCommand runs bkp with args and returns its stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeManifest writes lines as the manifest of configDir.
func writeManifest(t *testing.T, configDir string, content string) string {
	t.Helper()
	path := filepath.Join(configDir, "bkp.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// makeSource creates dir/name with a single file and returns its path.
func makeSource(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("content"), 0o644))
	return dir
}
