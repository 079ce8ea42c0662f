package manifest

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// MaxLineLength bounds a single manifest line.
const MaxLineLength = 64 * 1024

// Parse turns raw manifest lines into a Manifest. Entries keep their
// destination token as written; see Resolve.
func Parse(lines []string) (*Manifest, error) {
	return parseLines("", lines)
}

// ParseReader reads r line by line and parses it. path is used for error
// context and stored on the returned Manifest.
func ParseReader(r io.Reader, path string) (*Manifest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineLength)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Path: path, Line: len(lines) + 1, Err: ErrLineTooLong}
		}
		return nil, errors.Wrap(err, "reading manifest")
	}
	return parseLines(path, lines)
}

func parseLines(path string, lines []string) (*Manifest, error) {
	m := &Manifest{Path: path, index: make(map[string]int)}

	for i, raw := range lines {
		line := raw
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSuffix(line, "\r")
		if isIgnored(line) {
			continue
		}

		entry, err := parseEntry(line)
		if err == nil {
			if _, dup := m.index[entry.Name]; dup {
				err = errors.Wrapf(ErrDuplicateName, "%q", entry.Name)
			}
		}
		if err != nil {
			return nil, &ParseError{Path: path, Line: i + 1, Text: raw, Err: err}
		}

		m.index[entry.Name] = -1
		m.entries = append(m.entries, entry)
	}

	m.sort()
	return m, nil
}

// isIgnored reports whether line is blank or a comment.
func isIgnored(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

// parseEntry parses "<name> = <source>, <destination>, <overwrite>".
func parseEntry(line string) (Entry, error) {
	sep := separatorIndex(line)
	if sep < 0 {
		return Entry{}, ErrMissingSeparator
	}

	name := strings.TrimSpace(strings.ReplaceAll(line[:sep], `\=`, "="))
	if name == "" {
		return Entry{}, ErrEmptyName
	}

	fields := strings.Split(line[sep+1:], ",")
	if len(fields) != 3 {
		return Entry{}, errors.Wrapf(ErrWrongArity, "got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	overwrite, err := parseOverwrite(fields[2])
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Name:        name,
		Source:      fields[0],
		Destination: fields[1],
		Overwrite:   overwrite,
	}, nil
}

// separatorIndex returns the index of the first '=' not preceded by a
// backslash, or -1.
func separatorIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] == '=' && (i == 0 || line[i-1] != '\\') {
			return i
		}
	}
	return -1
}

func parseOverwrite(token string) (bool, error) {
	switch {
	case strings.EqualFold(token, "true"):
		return true, nil
	case strings.EqualFold(token, "false"):
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidOverwrite, "got %q", token)
	}
}
