package backup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/pkg/fileutil"
)

func logDiscard() *slog.Logger {
	return logging.NewDiscard()
}

func TestReporter_Levels(t *testing.T) {
	e := manifest.Entry{Name: "docs", Source: "~/Documents", Destination: "/cfg"}
	notFound := &fileutil.CopyError{Kind: fileutil.KindNotFound, Path: "~/Documents", Err: errors.New("no such file")}

	tests := []struct {
		name    string
		outcome Outcome
		level   string
		want    []string
	}{
		{
			name:    "success",
			outcome: Outcome{Kind: Succeeded, Result: &Result{Target: "/cfg/docs_x", Bytes: 2048, Time: start}},
			level:   "INFO",
			want:    []string{"docs: successfully secured, 05.03.2024 14:07:09", "target=/cfg/docs_x", `size="2.0 kB"`},
		},
		{
			name:    "skipped",
			outcome: Classify(nil, notFound),
			level:   "WARN",
			want:    []string{"docs: skipped", "entry=docs", "source=~/Documents", "destination=/cfg", "reason="},
		},
		{
			name:    "fatal",
			outcome: Classify(nil, errors.New("disk on fire")),
			level:   "ERROR",
			want:    []string{"docs: backup failed", "entry=docs", `error="disk on fire"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewReporter(bufferLogger(&buf), newClock())
			r.Report(context.Background(), e, tt.outcome)

			out := buf.String()
			assert.True(t, strings.Contains(out, tt.level), "missing level %s in %q", tt.level, out)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestReporter_Summary(t *testing.T) {
	r := NewReporter(logDiscard(), newClock())
	e := manifest.Entry{Name: "x"}

	r.Report(context.Background(), e, Outcome{Kind: Succeeded, Result: &Result{Bytes: 10}})
	r.Report(context.Background(), e, Outcome{Kind: Succeeded, Result: &Result{Bytes: 5}})
	r.Report(context.Background(), e, Outcome{Kind: SkippedRecoverable, Err: errors.New("x")})
	r.Report(context.Background(), e, Outcome{Kind: Fatal, Err: errors.New("y")})

	assert.Equal(t, Summary{Total: 4, Succeeded: 2, Skipped: 1, Failed: 1, Bytes: 15}, r.Summary())
}

func TestReporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(bufferLogger(&buf), nil).Empty("/cfg/bkp.txt")
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "nothing to back up, edit file at /cfg/bkp.txt")
}

func TestReporter_InterruptedIsNotCounted(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(bufferLogger(&buf), newClock())
	r.Interrupted(context.Background(), manifest.Entry{Name: "docs"}, context.Canceled)

	assert.Equal(t, Summary{}, r.Summary())
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "run interrupted before docs")
	assert.Contains(t, buf.String(), `reason="context canceled"`)
	assert.NotContains(t, buf.String(), "backup failed")
}
