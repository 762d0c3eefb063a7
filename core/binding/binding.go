// Package binding resolves a route's declared bindings against the live
// schema and query capability, producing the bound-model set handed to the
// handler.
package binding

import (
	"context"
	"errors"
	"fmt"
)

// Row is one resolved record, column name to value.
type Row map[string]any

// Clause is a single equality condition.
type Clause struct {
	Column string
	Value  any
}

// Predicate is a conjunction of equality clauses, evaluated in order.
type Predicate []Clause

// Querier is the black-box query capability. Implementations own their own
// concurrency safety; the resolver never calls Query concurrently within
// one request.
type Querier interface {
	// Query returns the first row of the collection matching the predicate,
	// or ok=false when no row matches. An error means the query itself
	// failed (infrastructure fault), not that nothing matched.
	Query(ctx context.Context, collection string, pred Predicate) (Row, bool, error)
}

// ErrNotFound is the single resolution-failure value exposed to callers.
// Missing collection, missing parameter, unknown column, and no matching
// row are deliberately indistinguishable here so a probing client cannot
// learn which part of a request was wrong. The cause survives only in
// diagnostics (see notFoundError).
var ErrNotFound = errors.New("binding: not found")

// notFoundError carries the internal cause while still matching ErrNotFound
// via errors.Is.
type notFoundError struct {
	cause string
	param string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("binding %q: not found (%s)", e.param, e.cause)
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(param, cause string) error {
	return &notFoundError{param: param, cause: cause}
}

// ModelSet maps parameter names to their resolved rows. One instance exists
// per request, owned by that request's capability set, and is discarded at
// request end.
type ModelSet struct {
	models map[string]Row
	err    error
}

// NewModelSet wraps resolved rows. A nil map is an empty set.
func NewModelSet(models map[string]Row) *ModelSet {
	if models == nil {
		models = map[string]Row{}
	}
	return &ModelSet{models: models}
}

// Unresolved returns a sentinel set whose reads fail with err. The
// dispatcher installs one when a route declares bindings but no schema map
// was ever configured, so the handler sees a descriptive configuration
// error instead of a silently empty value.
func Unresolved(err error) *ModelSet {
	return &ModelSet{err: err}
}

// Get returns the row bound to the given parameter name.
func (m *ModelSet) Get(param string) (Row, error) {
	if m.err != nil {
		return nil, m.err
	}
	row, ok := m.models[param]
	if !ok {
		return nil, fmt.Errorf("no bound model for parameter %q", param)
	}
	return row, nil
}

// Len returns the number of bound models. A sentinel set has zero.
func (m *ModelSet) Len() int {
	return len(m.models)
}
