package object

import "fmt"

// TreeBuilder accumulates named entries and writes them out as a new
// immutable tree. Inserting a name that is already present replaces the
// previous entry. The builder never mutates the tree it was seeded from.
type TreeBuilder struct {
	store   *Store
	entries map[string]TreeEntry
}

// TreeBuilder returns an empty builder.
func (s *Store) TreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		store:   s,
		entries: make(map[string]TreeEntry),
	}
}

// TreeBuilderFrom returns a builder pre-populated with the entries of an
// existing tree, so untouched siblings are carried over unchanged.
func (s *Store) TreeBuilderFrom(base Hash) (*TreeBuilder, error) {
	tb := s.TreeBuilder()
	if base == "" {
		return tb, nil
	}
	tr, err := s.ReadTree(base)
	if err != nil {
		return nil, fmt.Errorf("tree builder from %s: %w", base, err)
	}
	for _, e := range tr.Entries {
		tb.entries[e.Name] = e
	}
	return tb, nil
}

// Insert adds or replaces the entry with the given name.
func (tb *TreeBuilder) Insert(name string, h Hash, kind EntryKind) {
	tb.entries[name] = TreeEntry{Name: name, Kind: kind, Hash: h}
}

// Remove drops the entry with the given name, if present.
func (tb *TreeBuilder) Remove(name string) {
	delete(tb.entries, name)
}

// Len reports the number of entries currently held.
func (tb *TreeBuilder) Len() int {
	return len(tb.entries)
}

// Write stores the accumulated entries as a tree and returns its hash.
// Entry order does not matter: serialization sorts by name, so the same
// set of entries always produces the same hash.
func (tb *TreeBuilder) Write() (Hash, error) {
	tr := &TreeObj{Entries: make([]TreeEntry, 0, len(tb.entries))}
	for _, e := range tb.entries {
		tr.Entries = append(tr.Entries, e)
	}
	return tb.store.WriteTree(tr)
}
