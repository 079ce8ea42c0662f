package manifest

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	bkperrors "github.com/thoreinstein/bkp/internal/errors"
)

// DefaultDestination is the destination token that means "the configuration
// directory". It is matched case-insensitively.
const DefaultDestination = "default"

// Entry is one manifest line.
type Entry struct {
	// Name identifies the entry in logs and prefixes snapshot folder names.
	Name string `json:"name" yaml:"name" toml:"name"`
	// Source is the file or directory to back up. It is not checked for
	// existence until the copy runs.
	Source string `json:"source" yaml:"source" toml:"source"`
	// Destination is the directory that receives the copy, or the
	// DefaultDestination token before resolution.
	Destination string `json:"destination" yaml:"destination" toml:"destination"`
	// Overwrite selects copying into Destination directly (true) or into a
	// fresh timestamped snapshot folder (false).
	Overwrite bool `json:"overwrite" yaml:"overwrite" toml:"overwrite"`
}

// IsDefaultDestination reports whether the destination is the "default" token.
func (e Entry) IsDefaultDestination() bool {
	return strings.EqualFold(strings.TrimSpace(e.Destination), DefaultDestination)
}

// Manifest is the set of entries keyed by name, iterated in lexicographic
// name order.
type Manifest struct {
	// Path is the file the manifest was read from, if any.
	Path string

	entries []Entry
	index   map[string]int
}

// New builds a manifest from entries. It fails with ErrDuplicateName when
// two entries share a name.
func New(path string, entries ...Entry) (*Manifest, error) {
	m := &Manifest{Path: path, index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := m.index[e.Name]; dup {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", e.Name)
		}
		m.index[e.Name] = -1
		m.entries = append(m.entries, e)
	}
	m.sort()
	return m, nil
}

func (m *Manifest) sort() {
	slices.SortFunc(m.entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i, e := range m.entries {
		m.index[e.Name] = i
	}
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in name order.
func (m *Manifest) Entries() []Entry {
	if m == nil {
		return nil
	}
	return slices.Clone(m.entries)
}

// Names returns the entry names in order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, m.Len())
	for _, e := range m.Entries() {
		names = append(names, e.Name)
	}
	return names
}

// Get looks up an entry by name.
func (m *Manifest) Get(name string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	i, ok := m.index[name]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Select returns a manifest restricted to names. Every name must exist.
// An empty names list selects everything.
func (m *Manifest) Select(names ...string) (*Manifest, error) {
	if len(names) == 0 {
		return m, nil
	}

	var (
		picked  []Entry
		unknown []string
	)
	for _, name := range names {
		e, ok := m.Get(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !slices.ContainsFunc(picked, func(p Entry) bool { return p.Name == name }) {
			picked = append(picked, e)
		}
	}
	if len(unknown) > 0 {
		return nil, errors.Wrapf(bkperrors.ErrUnknownEntry, "%s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(m.Names(), ", "))
	}
	return New(m.Path, picked...)
}
