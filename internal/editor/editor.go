// Package editor launches the user's text editor on the manifest.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/bkp/internal/errors"
)

// EditorEnv names an editor used only by bkp. It wins over $EDITOR.
const EditorEnv = "BKP_EDITOR"

// ErrNoEditor indicates the editor command is empty.
var ErrNoEditor = errors.New("no editor configured")

// Open runs the user's editor on path and waits for it to exit. The
// editor inherits the terminal; w receives a one-line location notice.
func Open(ctx context.Context, w io.Writer, path string) error {
	args := strings.Fields(Command())
	if len(args) == 0 {
		return ErrNoEditor
	}

	if w != nil {
		_, _ = io.WriteString(w, "Location: "+path+"\n")
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", args[0])
	}
	return nil
}

// Command returns the editor command line to use.
// Fallback chain: $BKP_EDITOR → $EDITOR → $VISUAL → nano → vi
func Command() string {
	for _, env := range []string{EditorEnv, "EDITOR", "VISUAL"} {
		if editor := strings.TrimSpace(os.Getenv(env)); editor != "" {
			return editor
		}
	}

	// User-friendly fallback (nano is easier for beginners)
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	// POSIX standard fallback (vi is available on all Unix systems)
	return "vi"
}
