// Package schema describes the relational shape bindings resolve against.
//
// The host application supplies a Map once at configuration time. The map is
// read-only after construction, so it is safe to share across concurrent
// requests without locking.
package schema

import "sort"

// Collection describes one table: its name and the columns a binding may
// look rows up by.
type Collection struct {
	Name    string
	Columns []string
}

// HasColumn reports whether the collection has the named column.
func (c Collection) HasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Map is an immutable mapping of collection name to column set.
//
// The zero Map is valid and empty; Configured distinguishes "no schema was
// ever supplied" from "schema supplied but missing a collection".
type Map struct {
	collections map[string]Collection
}

// NewMap builds a Map from the given collections. Later duplicates of the
// same collection name replace earlier ones. The input is copied; callers
// may reuse their slices.
func NewMap(collections ...Collection) Map {
	m := make(map[string]Collection, len(collections))
	for _, c := range collections {
		cols := make([]string, len(c.Columns))
		copy(cols, c.Columns)
		m[c.Name] = Collection{Name: c.Name, Columns: cols}
	}
	return Map{collections: m}
}

// Configured reports whether a schema was supplied at all.
func (m Map) Configured() bool {
	return m.collections != nil
}

// Collection returns the named collection.
func (m Map) Collection(name string) (Collection, bool) {
	c, ok := m.collections[name]
	return c, ok
}

// Has reports whether the named collection exists.
func (m Map) Has(name string) bool {
	_, ok := m.collections[name]
	return ok
}

// Names returns all collection names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
