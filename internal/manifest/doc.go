// Package manifest reads the bkp manifest: the user-edited text file that
// names what to back up, where to, and how.
//
// Each non-comment line declares one entry:
//
//	<name> = <source>, <destination>, <overwrite>
//
// Lines that are blank or whose first non-blank characters are # or // are
// ignored. The destination "default" stands for the configuration
// directory and is expanded by [Resolve]. The overwrite token is true or
// false in any letter case.
//
// Parsing is fail-fast: the first malformed line rejects the whole
// manifest with a [*ParseError], so a typo never silently drops an entry.
// Duplicate names are rejected the same way.
package manifest
