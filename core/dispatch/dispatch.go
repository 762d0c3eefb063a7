// Package dispatch binds verb+pattern routes to handler computations and
// drives each request through validation, binding resolution, capability
// composition, execution, and guaranteed teardown.
//
// Every request gets an independent state machine instance; the only state
// shared across requests is the read-only schema map and the querier.
package dispatch

import (
	"context"
	"database/sql"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/PatrickOgilvie/honertia/adapters/metrics"
	"github.com/PatrickOgilvie/honertia/core/apperr"
	"github.com/PatrickOgilvie/honertia/core/binding"
	"github.com/PatrickOgilvie/honertia/core/capability"
	"github.com/PatrickOgilvie/honertia/core/route"
	"github.com/PatrickOgilvie/honertia/core/schema"
)

// Handler is the registered computation for a route. It runs only when the
// dispatcher has composed the request's capability set, and it responds
// through the set's responder. A nil return means the handler responded; a
// *apperr.Error is handed to the error mapper; anything else is a fault.
type Handler func(ctx context.Context, caps *capability.Set) error

// ParamSchema validates and decodes raw path parameters before binding
// resolution. Supplied by the host; treated as a black box.
type ParamSchema interface {
	Decode(params map[string]string) (map[string]string, error)
}

// ErrorMapper converts a typed application error into a response. The
// default maps the error's status and serializes code+message as JSON.
type ErrorMapper func(w http.ResponseWriter, r *http.Request, appErr *apperr.Error)

// Config assembles a Registry. Schema and Querier come from the host
// application once at configuration time; Database and Auth are optional
// and fall back to Unconfigured placeholders.
type Config struct {
	Schema  schema.Map
	Querier binding.Querier

	Database *sql.DB
	Auth     capability.Authenticator

	// Responder overrides the response factory registered per request.
	// Nil uses the built-in JSON responder.
	Responder func(w http.ResponseWriter, r *http.Request) capability.Responder

	// Renderer supplies the per-request page renderer. Nil leaves the
	// renderer capability unprovided.
	Renderer func(w http.ResponseWriter) capability.Renderer

	// AppProviders merge last into every request's capability set and win
	// on key collision.
	AppProviders []capability.Entry

	ErrorMapper ErrorMapper
	Logger      zerolog.Logger
	Metrics     *metrics.Collector
}

// RouteInfo describes one registered route, for introspection and the
// routes CLI command.
type RouteInfo struct {
	Method   string
	Pattern  string
	Native   string
	Bindings []route.Binding
}

// Registry owns the route table and the underlying chi router.
type Registry struct {
	cfg      Config
	mux      *chi.Mux
	resolver *binding.Resolver
	logger   zerolog.Logger

	mu     sync.Mutex
	routes []RouteInfo
}

// New creates a Registry from the given configuration.
func New(cfg Config) *Registry {
	logger := cfg.Logger.With().Str("component", "dispatch").Logger()

	reg := &Registry{
		cfg:    cfg,
		mux:    chi.NewRouter(),
		logger: logger,
	}
	if cfg.Schema.Configured() && cfg.Querier != nil {
		reg.resolver = binding.NewResolver(cfg.Schema, cfg.Querier, logger)
	}
	if reg.cfg.ErrorMapper == nil {
		reg.cfg.ErrorMapper = defaultErrorMapper
	}
	if reg.cfg.Responder == nil {
		reg.cfg.Responder = func(w http.ResponseWriter, r *http.Request) capability.Responder {
			return &jsonResponder{w: w, r: r}
		}
	}
	return reg
}

// Handle registers a handler for method+pattern. Malformed patterns panic:
// they are configuration errors and must never survive to request time.
func (reg *Registry) Handle(method, pattern string, h Handler, opts ...Option) {
	reg.handle(method, pattern, h, nil, opts)
}

// Group accumulates a path prefix and route-scoped providers, applying
// them to every route registered inside fn. Nothing happens until routes
// register; the builder itself has no side effects.
func (reg *Registry) Group(prefix string, providers []capability.Entry, fn func(g Group)) {
	Group{reg: reg}.Group(prefix, providers, fn)
}

// Routes returns the registered route table.
func (reg *Registry) Routes() []RouteInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]RouteInfo, len(reg.routes))
	copy(out, reg.routes)
	return out
}

// Handler returns the http.Handler serving the registered routes.
func (reg *Registry) Handler() http.Handler {
	return reg.mux
}

// Group is an immutable route-builder layering a prefix and providers over
// a registry. Each chained call returns a new value, so concurrent route
// construction never shares mutable builder state.
type Group struct {
	reg       *Registry
	prefix    string
	providers []capability.Entry
}

// Group derives a nested builder with an extended prefix and additional
// providers. The receiver is unchanged.
func (g Group) Group(prefix string, providers []capability.Entry, fn func(g Group)) {
	next := Group{
		reg:       g.reg,
		prefix:    joinPath(g.prefix, prefix),
		providers: append(append([]capability.Entry(nil), g.providers...), providers...),
	}
	fn(next)
}

// Handle registers a route under the group's accumulated prefix with its
// accumulated providers.
func (g Group) Handle(method, pattern string, h Handler, opts ...Option) {
	g.reg.handle(method, joinPath(g.prefix, pattern), h, g.providers, opts)
}

// Option configures a single route registration.
type Option func(*routeOptions)

type routeOptions struct {
	paramSchema ParamSchema
	providers   []capability.Entry
	collections map[string]string
}

// WithParamSchema declares a validation schema decoded over the raw path
// parameters before binding resolution.
func WithParamSchema(ps ParamSchema) Option {
	return func(o *routeOptions) { o.paramSchema = ps }
}

// WithProviders attaches route-scoped capability providers.
func WithProviders(entries ...capability.Entry) Option {
	return func(o *routeOptions) { o.providers = append(o.providers, entries...) }
}

// WithCollection overrides the collection a parameter binds against,
// replacing the pluralized default.
func WithCollection(param, collection string) Option {
	return func(o *routeOptions) {
		if o.collections == nil {
			o.collections = map[string]string{}
		}
		o.collections[param] = collection
	}
}

type compiledRoute struct {
	method  string
	pattern route.Pattern
	handler Handler
	opts    routeOptions

	// providers is the merge input: group providers first, then the
	// route's own, in attachment order.
	providers []capability.Entry
}

func (reg *Registry) handle(method, pattern string, h Handler, groupProviders []capability.Entry, opts []Option) {
	p, err := route.Translate(pattern)
	if err != nil {
		panic("dispatch: " + err.Error())
	}

	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}
	for param, collection := range o.collections {
		overrideCollection(&p, param, collection)
	}

	rt := &compiledRoute{
		method:    method,
		pattern:   p,
		handler:   h,
		opts:      o,
		providers: append(append([]capability.Entry(nil), groupProviders...), o.providers...),
	}

	reg.mu.Lock()
	reg.routes = append(reg.routes, RouteInfo{
		Method:   method,
		Pattern:  pattern,
		Native:   p.Native,
		Bindings: p.Bindings,
	})
	reg.mux.Method(method, p.Native, reg.dispatch(rt))
	reg.mu.Unlock()

	reg.logger.Debug().
		Str("method", method).
		Str("pattern", pattern).
		Int("bindings", len(p.Bindings)).
		Msg("route registered")
}

// overrideCollection rewrites one binding's target collection in place on
// the freshly translated (not yet shared) pattern.
func overrideCollection(p *route.Pattern, param, collection string) {
	for i := range p.Bindings {
		if p.Bindings[i].Param == param {
			p.Bindings[i].Collection = collection
			return
		}
	}
	panic("dispatch: collection override for unknown parameter " + param)
}

func joinPath(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}
	p := prefix
	if len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	if pattern == "" || pattern == "/" {
		return p
	}
	if pattern[0] != '/' {
		return p + "/" + pattern
	}
	return p + pattern
}
