package manifest

import "strings"

// Resolve replaces the "default" destination with configDir. Any other
// destination is kept as the trimmed token; it is not validated here.
// Resolving an already resolved entry returns it unchanged.
func Resolve(e Entry, configDir string) Entry {
	if e.IsDefaultDestination() {
		e.Destination = configDir
		return e
	}
	e.Destination = strings.TrimSpace(e.Destination)
	return e
}

// Resolve returns a copy of m with every entry resolved against configDir.
func (m *Manifest) Resolve(configDir string) *Manifest {
	out := &Manifest{Path: m.Path, index: make(map[string]int, m.Len())}
	for _, e := range m.Entries() {
		out.index[e.Name] = len(out.entries)
		out.entries = append(out.entries, Resolve(e, configDir))
	}
	return out
}
