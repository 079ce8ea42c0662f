package backup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/juju/clock"

	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/manifest"
)

// DateTimeLayout formats the completion time in success messages.
const DateTimeLayout = "02.01.2006 15:04:05"

// Reporter turns entry outcomes into log records and keeps the run summary.
type Reporter struct {
	logger  *slog.Logger
	clock   clock.Clock
	summary Summary
}

// NewReporter creates a Reporter. A nil logger means slog.Default(), a nil
// clock the wall clock.
func NewReporter(logger *slog.Logger, clk clock.Clock) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &Reporter{logger: logger, clock: clk}
}

// Empty reports a manifest without entries.
func (r *Reporter) Empty(path string) {
	r.logger.Info(fmt.Sprintf("nothing to back up, edit file at %s", path))
}

// Report logs the outcome for entry and records it in the summary.
func (r *Reporter) Report(ctx context.Context, entry manifest.Entry, o Outcome) {
	r.summary.add(o)

	source, destination := entry.Source, entry.Destination
	if o.Result != nil {
		source, destination = o.Result.Source, o.Result.Destination
	}

	switch o.Kind {
	case Succeeded:
		at := r.clock.Now()
		target := destination
		var size uint64
		if o.Result != nil {
			if !o.Result.Time.IsZero() {
				at = o.Result.Time
			}
			target, size = o.Result.Target, o.Result.Bytes
		}
		r.logger.InfoContext(ctx, fmt.Sprintf("%s: successfully secured, %s", entry.Name, at.Format(DateTimeLayout)),
			"target", target,
			"size", humanize.Bytes(size),
		)
	case SkippedRecoverable:
		r.logger.WarnContext(ctx, fmt.Sprintf("%s: skipped", entry.Name),
			logging.KeyEntry, entry.Name,
			"source", source,
			"destination", destination,
			"reason", o.Reason(),
		)
	default:
		r.logger.ErrorContext(ctx, fmt.Sprintf("%s: backup failed", entry.Name),
			logging.KeyEntry, entry.Name,
			"source", source,
			"destination", destination,
			"overwrite", entry.Overwrite,
			logging.KeyError, o.Reason(),
		)
	}
}

// Interrupted logs that the run stopped before entry was attempted. The
// entry is not counted.
func (r *Reporter) Interrupted(ctx context.Context, entry manifest.Entry, cause error) {
	r.logger.WarnContext(ctx, "run interrupted before "+entry.Name,
		logging.KeyEntry, entry.Name,
		"reason", cause.Error(),
	)
}

// Planned logs what a dry run would do for res.
func (r *Reporter) Planned(ctx context.Context, res *Result) {
	r.summary.Total++
	r.summary.Planned++
	r.logger.InfoContext(ctx, fmt.Sprintf("%s: would %s", res.Entry.Name, res.Strategy),
		"source", res.Source,
		"target", res.Target,
	)
}

// Summary returns the counts recorded so far.
func (r *Reporter) Summary() Summary {
	return r.summary
}
