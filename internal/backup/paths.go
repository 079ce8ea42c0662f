package backup

import (
	"path/filepath"
	"strings"
	"time"
)

// StampLayout formats snapshot timestamps: day, abbreviated month, year,
// hours, minutes, seconds and 100ns ticks.
const StampLayout = "02Jan2006_150405.0000000"

// stampResolution is the smallest step between two snapshot stamps.
const stampResolution = 100 * time.Nanosecond

// partialInfix marks staging folders that have not been renamed yet.
const partialInfix = "_partial-"

// SnapshotName returns the folder name for a snapshot of name taken at t.
func SnapshotName(name string, t time.Time) string {
	return name + "_" + t.Format(StampLayout)
}

// SnapshotPath returns the snapshot folder for name under destination.
func SnapshotPath(destination, name string, t time.Time) string {
	return filepath.Join(destination, SnapshotName(name, t))
}

// stagingPrefix is the afero.TempDir prefix for name's staging folders.
func stagingPrefix(name string) string {
	return "." + name + partialInfix
}

// isSnapshotOf reports whether a folder name looks like a snapshot of name.
func isSnapshotOf(folder, name string) bool {
	rest, ok := strings.CutPrefix(folder, name+"_")
	if !ok {
		return false
	}
	_, err := time.Parse(StampLayout, rest)
	return err == nil
}

// isStagingOf reports whether a folder name is a staging folder for name.
func isStagingOf(folder, name string) bool {
	return strings.HasPrefix(folder, stagingPrefix(name))
}

// validName reports whether name can be used as a single path element.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, filepath.Separator)
}
