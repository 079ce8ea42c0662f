package backup

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	bkperrors "github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/manifest"
)

// Runner executes every entry of a manifest in order.
type Runner struct {
	executor *Executor
	reporter *Reporter
	dryRun   bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDryRun makes the runner log planned copies instead of executing them.
func WithDryRun(dryRun bool) RunnerOption {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithReporter replaces the default reporter.
func WithReporter(rep *Reporter) RunnerOption {
	return func(r *Runner) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// NewRunner creates a Runner that copies with exec and reports to logger.
func NewRunner(exec *Executor, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if exec == nil {
		exec = NewExecutor()
	}
	r := &Runner{executor: exec}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = NewReporter(logger, exec.clock)
	}
	return r
}

// Run backs up every entry of the resolved manifest m, one after another.
//
// Recoverable copy failures are logged and skipped. The first fatal failure
// stops the run and is returned as an ExitSystem error; entries after it are
// not attempted. ctx is checked before each entry.
func (r *Runner) Run(ctx context.Context, m *manifest.Manifest) (Summary, error) {
	if m.Len() == 0 {
		path := ""
		if m != nil {
			path = m.Path
		}
		r.reporter.Empty(path)
		return r.reporter.Summary(), nil
	}

	for _, entry := range m.Entries() {
		if err := ctx.Err(); err != nil {
			r.reporter.Interrupted(ctx, entry, err)
			return r.reporter.Summary(), bkperrors.NewInterruptedError(err)
		}

		if r.dryRun {
			r.reporter.Planned(ctx, r.executor.Plan(entry))
			continue
		}

		res, err := r.executor.Execute(ctx, entry)
		o := Classify(res, err)
		r.reporter.Report(ctx, entry, o)
		if o.Kind == Fatal {
			return r.reporter.Summary(), bkperrors.NewSystemError(
				errors.Wrapf(err, "backing up %s", entry.Name),
				"Check the log file for details")
		}
	}

	return r.reporter.Summary(), nil
}
