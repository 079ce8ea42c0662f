// Package backup runs the entries of a manifest.
//
// An [Executor] copies a single resolved entry using one of two strategies:
//
//   - overwrite: the source is copied into the destination. Files already
//     present there are kept, missing ones are added, so repeated runs never
//     fail with "already exists".
//   - snapshot: the source is copied into a fresh folder
//     <destination>/<name>_<stamp>, stamp formatted with [StampLayout]. The
//     copy is staged in a hidden .<name>_partial-* folder and renamed only
//     after it succeeded, so a failed copy leaves no empty snapshot behind.
//
// Snapshot stamps come from an injectable [github.com/juju/clock.Clock] and
// never repeat within an Executor.
//
// [Classify] sorts each result into an [Outcome]. Copy failures of kind not
// found, permission denied, already exists or invalid name are recoverable:
// the [Runner] logs a warning and moves on to the next entry. Anything else
// is fatal and stops the run with an ExitSystem error.
//
// [Sweep] removes empty snapshot folders and stale staging folders left by
// interrupted runs.
package backup
