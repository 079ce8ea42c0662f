package commands

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"BKP_DEBUG=1", "1", slog.LevelDebug},
		{"BKP_DEBUG=true", "true", slog.LevelDebug},
		{"BKP_DEBUG=2", "2", logging.LevelTrace},
		{"BKP_DEBUG=0", "0", slog.LevelWarn},
		{"BKP_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			t.Setenv(DebugEnv, tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelDebug && logger.Enabled(t.Context(), logging.LevelTrace) {
				t.Error("expected Trace level to be disabled when BKP_DEBUG=1")
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	resetFlags(t)
	t.Setenv(DebugEnv, "2")
	verbosity = 1

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected Info level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug level to be disabled (flag should override env var)")
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	resetFlags(t)
	quiet = true

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled")
	}
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	resetFlags(t)
	verbosity = 1
	quiet = true

	err := setupLogging(rootCmd)
	if err == nil {
		t.Fatal("expected error when both quiet and verbose are set")
	}
	if got := errors.ExitCode(err); got != errors.ExitUser {
		t.Errorf("ExitCode = %d, want %d", got, errors.ExitUser)
	}
}

func TestSetupLogging_InvalidFormat(t *testing.T) {
	resetFlags(t)
	logFormat = "xml"

	if err := setupLogging(rootCmd); errors.ExitCode(err) != errors.ExitUser {
		t.Errorf("expected user error for invalid format, got %v", err)
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "exit error with suggestion",
			err:  errors.NewUserError(errors.New("bad line"), "Fix it"),
			want: "Error: bad line\nFix it\n",
		},
		{
			name: "wrapped exit error",
			err:  errors.Wrap(errors.NewSystemError(errors.New("disk full"), ""), "executing root command"),
			want: "Error: disk full\n",
		},
		{
			name: "plain error",
			err:  errors.New("unknown flag: --nope"),
			want: "Error: unknown flag: --nope\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)
			if buf.String() != tt.want {
				t.Errorf("PrintError() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRoot_RejectsArguments(t *testing.T) {
	_, _, err := executeCommand(t, "--config-dir", t.TempDir(), "docs")
	if err == nil {
		t.Fatal("expected error for positional argument on root command")
	}
}
