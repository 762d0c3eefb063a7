package capability

import (
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/PatrickOgilvie/honertia/core/apperr"
	"github.com/PatrickOgilvie/honertia/core/binding"
)

// Set is the complete capability collection for one request/response cycle.
// It is composed once per request, handed to exactly one handler, and
// closed when the request ends. A Set must not outlive its request.
type Set struct {
	values map[Key]any

	mu        sync.Mutex
	teardowns []func()
	closeOnce sync.Once
}

// Compose folds providers into a Set: base entries first, then the bound
// models under KeyModels, then route providers in attachment order, then
// app providers. Later writers win on key collision. The merge is a pure
// structural union resolved once, so handler lookups are O(1).
func Compose(base []Entry, models *binding.ModelSet, routeProviders []Entry, appProviders []Entry) *Set {
	values := make(map[Key]any, len(base)+len(routeProviders)+len(appProviders)+1)

	for _, e := range base {
		values[e.Key] = e.Value
	}
	if models != nil {
		values[KeyModels] = models
	}
	for _, e := range routeProviders {
		values[e.Key] = e.Value
	}
	for _, e := range appProviders {
		values[e.Key] = e.Value
	}

	return &Set{values: values}
}

// Get returns the raw value for a key.
func (s *Set) Get(key Key) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns every provided key in sorted order.
func (s *Set) Keys() []Key {
	keys := make([]Key, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// OnTeardown registers a release callback. Callbacks run once, in reverse
// registration order, when the Set closes.
func (s *Set) OnTeardown(fn func()) {
	s.mu.Lock()
	s.teardowns = append(s.teardowns, fn)
	s.mu.Unlock()
}

// Close releases everything the request provisioned. It runs at most once;
// extra calls are no-ops. The dispatcher guarantees exactly one Close per
// request regardless of exit path.
func (s *Set) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		tds := s.teardowns
		s.teardowns = nil
		s.mu.Unlock()

		for i := len(tds) - 1; i >= 0; i-- {
			tds[i]()
		}
	})
}

// lookup resolves a key, translating absence and Unconfigured placeholders
// into configuration errors.
func (s *Set) lookup(key Key, remedy string) (any, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, &apperr.ConfigurationError{Capability: string(key), Remedy: remedy}
	}
	if u, ok := v.(Unconfigured); ok {
		return nil, u.Err()
	}
	return v, nil
}

// badProvider reports a provider that overrode a well-known key with a
// value of the wrong type. A misconfigured provider must surface as a
// configuration error at the accessor, never as a panic in the handler.
func badProvider(key Key, v any, want string) error {
	return &apperr.ConfigurationError{
		Capability: string(key),
		Remedy:     fmt.Sprintf("provider supplied %T, want %s", v, want),
	}
}

// Request returns the live request accessor.
func (s *Set) Request() (*http.Request, error) {
	v, err := s.lookup(KeyRequest, "dispatch requests through the registry")
	if err != nil {
		return nil, err
	}
	req, ok := v.(*http.Request)
	if !ok {
		return nil, badProvider(KeyRequest, v, "*http.Request")
	}
	return req, nil
}

// Responder returns the response factory.
func (s *Set) Responder() (Responder, error) {
	v, err := s.lookup(KeyResponder, "dispatch requests through the registry")
	if err != nil {
		return nil, err
	}
	r, ok := v.(Responder)
	if !ok {
		return nil, badProvider(KeyResponder, v, "capability.Responder")
	}
	return r, nil
}

// Renderer returns the page-rendering helper.
func (s *Set) Renderer() (Renderer, error) {
	v, err := s.lookup(KeyRenderer, "register a renderer on the registry")
	if err != nil {
		return nil, err
	}
	r, ok := v.(Renderer)
	if !ok {
		return nil, badProvider(KeyRenderer, v, "capability.Renderer")
	}
	return r, nil
}

// DB returns the database handle.
func (s *Set) DB() (*sql.DB, error) {
	v, err := s.lookup(KeyDB, "supply a database handle when building the registry")
	if err != nil {
		return nil, err
	}
	db, ok := v.(*sql.DB)
	if !ok {
		return nil, badProvider(KeyDB, v, "*sql.DB")
	}
	return db, nil
}

// Auth returns the auth handle.
func (s *Set) Auth() (Authenticator, error) {
	v, err := s.lookup(KeyAuth, "supply an authenticator when building the registry")
	if err != nil {
		return nil, err
	}
	a, ok := v.(Authenticator)
	if !ok {
		return nil, badProvider(KeyAuth, v, "capability.Authenticator")
	}
	return a, nil
}

// AuthUser returns the pre-resolved authenticated user, if one was
// established before dispatch. Absence is normal for anonymous requests,
// not a configuration error.
func (s *Set) AuthUser() (*User, bool) {
	v, ok := s.values[KeyAuthUser]
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok && u != nil
}

// Models returns the bound-model set resolved from the request path.
func (s *Set) Models() (*binding.ModelSet, error) {
	v, err := s.lookup(KeyModels, "declare bindings in the route pattern")
	if err != nil {
		return nil, err
	}
	m, ok := v.(*binding.ModelSet)
	if !ok {
		return nil, badProvider(KeyModels, v, "*binding.ModelSet")
	}
	return m, nil
}
