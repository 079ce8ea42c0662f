package backup

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/pkg/fileutil"
)

// Strategy is how an entry is copied.
type Strategy int

const (
	// StrategyOverwrite copies into the destination itself, keeping files
	// that are already there.
	StrategyOverwrite Strategy = iota
	// StrategySnapshot copies into a new timestamped folder under the
	// destination.
	StrategySnapshot
)

func (s Strategy) String() string {
	if s == StrategySnapshot {
		return "snapshot"
	}
	return "overwrite"
}

// StrategyFor returns the strategy selected by the entry's overwrite flag.
func StrategyFor(e manifest.Entry) Strategy {
	if e.Overwrite {
		return StrategyOverwrite
	}
	return StrategySnapshot
}

// Result describes a finished (or planned) copy for one entry.
type Result struct {
	Entry    manifest.Entry
	Strategy Strategy
	// Source and Destination are the entry paths after ~ expansion.
	Source      string
	Destination string
	// Target is the directory the source was copied into: the destination
	// for overwrite runs, the snapshot folder otherwise.
	Target string
	// Bytes is the number of bytes written. Zero for dry runs.
	Bytes uint64
	// Time is when the copy completed.
	Time time.Time
	// DryRun is set when nothing was copied.
	DryRun bool
}

// OutcomeKind is the per-entry result category.
type OutcomeKind int

const (
	Succeeded OutcomeKind = iota
	SkippedRecoverable
	Fatal
)

func (k OutcomeKind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case SkippedRecoverable:
		return "skipped"
	default:
		return "fatal"
	}
}

// Outcome pairs an entry result with its category. Err is nil only for
// Succeeded.
type Outcome struct {
	Kind   OutcomeKind
	Result *Result
	Err    error
}

// Reason returns the failure reason, or "" on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Classify turns the return values of Executor.Execute into an Outcome.
func Classify(res *Result, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: Succeeded, Result: res}
	case IsRecoverable(err):
		return Outcome{Kind: SkippedRecoverable, Result: res, Err: err}
	default:
		return Outcome{Kind: Fatal, Result: res, Err: err}
	}
}

// IsRecoverable reports whether a failed entry may be skipped so the run can
// continue. Only copy failures of a known kind qualify; cancellation and
// errors outside the copy primitive are fatal.
func IsRecoverable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ce *fileutil.CopyError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Kind {
	case fileutil.KindNotFound, fileutil.KindPermissionDenied,
		fileutil.KindAlreadyExists, fileutil.KindInvalidName:
		return true
	default:
		return false
	}
}

// Summary counts the outcomes of one run.
type Summary struct {
	Total     int    `json:"total" yaml:"total"`
	Succeeded int    `json:"succeeded" yaml:"succeeded"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Failed    int    `json:"failed" yaml:"failed"`
	Planned   int    `json:"planned" yaml:"planned"`
	Bytes     uint64 `json:"bytes" yaml:"bytes"`
}

func (s *Summary) add(o Outcome) {
	s.Total++
	switch o.Kind {
	case Succeeded:
		s.Succeeded++
		if o.Result != nil {
			s.Bytes += o.Result.Bytes
		}
	case SkippedRecoverable:
		s.Skipped++
	default:
		s.Failed++
	}
}
