package binding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PatrickOgilvie/honertia/core/relation"
	"github.com/PatrickOgilvie/honertia/core/route"
	"github.com/PatrickOgilvie/honertia/core/schema"
)

// Resolver turns a route's bindings plus live request parameters into a
// ModelSet. Safe for concurrent use: it holds only the read-only schema map
// and the querier.
type Resolver struct {
	schema  schema.Map
	querier Querier
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given schema and query capability.
func NewResolver(s schema.Map, q Querier, logger zerolog.Logger) *Resolver {
	return &Resolver{
		schema:  s,
		querier: q,
		logger:  logger.With().Str("component", "binding").Logger(),
	}
}

// Resolve walks the bindings in path order. Each resolved row becomes the
// scoping parent for the next binding, so resolution is strictly
// sequential. The result is all-or-nothing: any failure discards every row
// resolved so far.
//
// Failures the client could probe for (unknown collection or column, absent
// or empty parameter, no matching row) all return ErrNotFound; the concrete
// cause is logged at debug level only. A Querier error or cancelled context
// propagates as-is, since that is an infrastructure fault rather than a
// lookup miss.
func (r *Resolver) Resolve(ctx context.Context, bindings []route.Binding, params map[string]string) (*ModelSet, error) {
	if len(bindings) == 0 {
		return NewModelSet(nil), nil
	}

	models := make(map[string]Row, len(bindings))

	var parentRow Row
	var parentCollection string

	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		collection, ok := r.schema.Collection(b.Collection)
		if !ok {
			r.debug(b, "collection not in schema")
			return nil, notFound(b.Param, "unknown collection")
		}

		value := params[b.Param]
		if value == "" {
			r.debug(b, "path parameter absent or empty")
			return nil, notFound(b.Param, "missing parameter")
		}

		if !collection.HasColumn(b.Column) {
			r.debug(b, "lookup column not on collection")
			return nil, notFound(b.Param, "unknown column")
		}

		pred := Predicate{{Column: b.Column, Value: value}}

		// Scope by the resolved parent when the naming convention links the
		// two collections. No relation, or an empty referenced value on the
		// parent, means the child resolves unscoped. Never an error.
		if parentRow != nil {
			if rel, ok := relation.Find(r.schema, b.Collection, parentCollection); ok {
				if pv := parentRow[rel.Referenced]; !emptyValue(pv) {
					pred = append(pred, Clause{Column: rel.ForeignKey, Value: pv})
				}
			}
		}

		row, found, err := r.querier.Query(ctx, b.Collection, pred)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", b.Collection, err)
		}
		if !found {
			r.debug(b, "no matching row")
			return nil, notFound(b.Param, "no row")
		}

		models[b.Param] = row
		parentRow = row
		parentCollection = b.Collection
	}

	return NewModelSet(models), nil
}

func (r *Resolver) debug(b route.Binding, cause string) {
	r.logger.Debug().
		Str("param", b.Param).
		Str("collection", b.Collection).
		Str("column", b.Column).
		Str("cause", cause).
		Msg("binding resolution failed")
}

// emptyValue reports whether a parent's referenced value cannot scope a
// child lookup.
func emptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
