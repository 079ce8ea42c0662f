package doctor

import (
	"context"
	"time"

	"github.com/juju/clock"
)

// Check is the interface that diagnostic checks must implement.
type Check interface {
	// Name returns the identifier for this check.
	Name() string

	// Category returns the grouping for this check.
	Category() string

	// Run executes the diagnostic check and returns its result.
	Run(ctx context.Context) *CheckResult
}

// Runner executes diagnostic checks and aggregates their results.
type Runner struct {
	checks []Check
	clock  clock.Clock
}

// NewRunner creates a new diagnostic runner. A nil clock means the wall clock.
func NewRunner(clk clock.Clock) *Runner {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Runner{
		checks: make([]Check, 0),
		clock:  clk,
	}
}

// AddCheck registers diagnostic checks with the runner.
func (r *Runner) AddCheck(c ...Check) {
	r.checks = append(r.checks, c...)
}

// Run executes all registered checks in order and returns a report. Checks
// not reached before ctx is done are left out.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		Timestamp: r.clock.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		if ctx.Err() != nil {
			break
		}
		result := check.Run(ctx)
		if result.Name == "" {
			result.Name = check.Name()
		}
		if result.Category == "" {
			result.Category = check.Category()
		}
		report.Results = append(report.Results, result)
		report.Summary.add(result.Status)
	}

	return report
}

// Report aggregates all check results with timing and summary.
type Report struct {
	// Timestamp is when the diagnostic run started.
	Timestamp time.Time `json:"timestamp"`

	// Results contains the outcome of each check.
	Results []*CheckResult `json:"results"`

	// Summary contains counts by severity level.
	Summary Summary `json:"summary"`
}
