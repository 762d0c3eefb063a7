// Package relation answers whether one collection references another under
// the naming convention, so nested bindings can scope child lookups by
// their resolved parent.
package relation

import (
	"github.com/PatrickOgilvie/honertia/core/convention"
	"github.com/PatrickOgilvie/honertia/core/schema"
)

// Descriptor names the columns of a conventional child -> parent reference.
// Computed on demand; never cached.
type Descriptor struct {
	// ForeignKey is the column on the child, e.g. "project_id".
	ForeignKey string

	// Referenced is the column on the parent, always "id" by convention.
	Referenced string
}

// Find reports whether child references parent by convention: the child
// must carry a `singular(parent)_id` column and the parent an `id` column.
//
// A missing relation is not an error. Callers resolve the child unscoped.
func Find(s schema.Map, childCollection, parentCollection string) (Descriptor, bool) {
	child, ok := s.Collection(childCollection)
	if !ok {
		return Descriptor{}, false
	}
	parent, ok := s.Collection(parentCollection)
	if !ok {
		return Descriptor{}, false
	}

	fk := convention.ForeignKey(parentCollection)
	if !child.HasColumn(fk) || !parent.HasColumn("id") {
		return Descriptor{}, false
	}

	return Descriptor{ForeignKey: fk, Referenced: "id"}, true
}
