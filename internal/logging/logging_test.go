package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("docs: successfully secured", "entry", "docs")

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	for _, key := range []string{"time", "level", "msg"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("JSON output missing %q field: %s", key, buf.String())
		}
	}
	if parsed["entry"] != "docs" {
		t.Errorf("entry = %v, want docs", parsed["entry"])
	}
}

func TestNew_UnknownFormatDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: Format("unknown"),
		Output: &buf,
	})

	logger.Info("test message", "key", "value")

	output := buf.String()
	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err == nil {
		t.Error("unknown format should default to text, not JSON")
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("output missing key=value attribute: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		configLevel  slog.Level
		logLevel     slog.Level
		shouldAppear bool
	}{
		{"info logged at info level", slog.LevelInfo, slog.LevelInfo, true},
		{"debug not logged at info level", slog.LevelInfo, slog.LevelDebug, false},
		{"warn logged at warn level", slog.LevelWarn, slog.LevelWarn, true},
		{"info not logged at warn level", slog.LevelWarn, slog.LevelInfo, false},
		{"trace logged at trace level", LevelTrace, LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: tt.configLevel, Output: &buf})
			logger.Log(t.Context(), tt.logLevel, "probe")

			if got := buf.Len() > 0; got != tt.shouldAppear {
				t.Errorf("message appeared = %v, want %v (output %q)", got, tt.shouldAppear, buf.String())
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{-1, slog.LevelWarn},
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{3, LevelTrace},
		{4, LevelTrace},
	}

	for _, tt := range tests {
		got := LevelFromVerbosity(tt.verbosity)
		if got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestLevelTrace(t *testing.T) {
	if LevelTrace >= slog.LevelDebug {
		t.Error("LevelTrace should be lower than LevelDebug")
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := NewDiscard()
	ctx := NewContext(t.Context(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the stored logger")
	}
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext without a logger should fall back to slog.Default")
	}
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	logger.Debug("debug level")
	logger.Error("error level")
}

func TestTestWriter_TrimsNewline(t *testing.T) {
	tw := &testWriter{t: t}

	n, err := tw.Write([]byte("test message\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len("test message\n") {
		t.Errorf("Write returned %d, want %d", n, len("test message\n"))
	}

	n, err = tw.Write([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("Write returned %d, want 0", n)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   Format
		wantOK bool
	}{
		{"text", FormatText, true},
		{"JSON", FormatJSON, true},
		{" json ", FormatJSON, true},
		{"xml", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNew_JSONTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelTrace, Format: FormatJSON, Output: &buf})

	logger.Log(t.Context(), LevelTrace, "walking source", "entry", "docs")

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if parsed["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", parsed["level"])
	}
}
