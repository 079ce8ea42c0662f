package editor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func clearEditorEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EditorEnv, "")
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
}

func TestCommand_Precedence(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bkp editor wins", map[string]string{EditorEnv: "hx", "EDITOR": "nvim", "VISUAL": "code"}, "hx"},
		{"editor", map[string]string{"EDITOR": "nvim", "VISUAL": "code"}, "nvim"},
		{"visual", map[string]string{"VISUAL": "code"}, "code"},
		{"blank is unset", map[string]string{"EDITOR": "   ", "VISUAL": "vscode"}, "vscode"},
		{"arguments kept", map[string]string{"EDITOR": "code --wait"}, "code --wait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEditorEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := Command(); got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommand_Fallback(t *testing.T) {
	clearEditorEnv(t)

	got := Command()

	// Should be nano if available, otherwise vi
	if _, err := exec.LookPath("nano"); err == nil {
		if got != "nano" {
			t.Errorf("Command() = %q, want %q (nano available)", got, "nano")
		}
	} else if got != "vi" {
		t.Errorf("Command() = %q, want %q (nano not available)", got, "vi")
	}
}

func TestOpen_Integration(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping integration test on windows (uses shell script mock)")
	}

	tmpDir := t.TempDir()
	mockEditor := filepath.Join(tmpDir, "mock-editor.sh")
	outputFile := filepath.Join(tmpDir, "output.txt")

	// The mock editor records its arguments.
	script := "#!/bin/sh\necho \"$@\" > " + outputFile + "\n"
	if err := os.WriteFile(mockEditor, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	clearEditorEnv(t)
	t.Setenv("EDITOR", mockEditor+" --wait")

	targetFile := filepath.Join(tmpDir, "bkp.txt")
	if err := os.WriteFile(targetFile, []byte("# manifest"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Open(context.Background(), &out, targetFile); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if want := "--wait " + targetFile; strings.TrimSpace(string(got)) != want {
		t.Errorf("mock editor args = %q, want %q", strings.TrimSpace(string(got)), want)
	}
	if !strings.Contains(out.String(), "Location: "+targetFile) {
		t.Errorf("output = %q, want location notice", out.String())
	}
}

func TestOpen_MissingEditor(t *testing.T) {
	clearEditorEnv(t)
	t.Setenv("EDITOR", "non-existent-binary-12345")

	if err := Open(context.Background(), nil, "bkp.txt"); err == nil {
		t.Error("expected error for non-existent editor, got nil")
	}
}
