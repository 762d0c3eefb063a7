// Package capability builds the per-request dependency set handed to
// handlers.
//
// A capability is a named dependency a handler may require; a provider is
// one (key, value) entry supplying it. Providers attach at three levels
// (the dispatcher's base set, per-route, and app-wide) and are folded into
// a single Set per request. Sets are never shared across requests.
package capability

import (
	"net/http"

	"github.com/PatrickOgilvie/honertia/core/apperr"
)

// Key names a capability.
type Key string

// Capabilities the dispatcher provides on every request. Applications may
// add their own keys freely.
const (
	KeyRequest   Key = "request"   // *http.Request accessor
	KeyResponder Key = "responder" // Responder (response factory)
	KeyRenderer  Key = "renderer"  // Renderer (page rendering helper)
	KeyDB        Key = "db"        // database handle, or Unconfigured
	KeyAuth      Key = "auth"      // Authenticator, or Unconfigured
	KeyAuthUser  Key = "auth_user" // *User, present only when pre-resolved
	KeyModels    Key = "models"    // *binding.ModelSet
)

// Entry is one provider: a value registered under a key. Entries are
// immutable; composition copies them into the request's Set.
type Entry struct {
	Key   Key
	Value any
}

// Provide builds a provider entry.
func Provide(key Key, value any) Entry {
	return Entry{Key: key, Value: value}
}

// Responder is the response factory capability. Implementations write to
// the request's response exactly once.
type Responder interface {
	JSON(status int, v any) error
	Text(status int, body string) error
	Redirect(url string, status int)
	NotFound()
}

// Renderer is the page-rendering capability.
type Renderer interface {
	RenderPage(name string, data any) error
}

// Authenticator is the auth-handle capability.
type Authenticator interface {
	Verify(r *http.Request) (*User, error)
}

// User is the resolved authenticated principal.
type User struct {
	ID    string
	Email string
	Role  string
}

// Unconfigured is an explicit placeholder registered for capabilities the
// application never wired up (database, auth). It is a tagged value checked
// at the accessor, not a trap proxy, so failure points stay statically
// visible. First access yields a ConfigurationError naming the capability
// and the remedy.
type Unconfigured struct {
	Capability Key
	Remedy     string
}

// Err returns the configuration error this placeholder stands for.
func (u Unconfigured) Err() error {
	return &apperr.ConfigurationError{Capability: string(u.Capability), Remedy: u.Remedy}
}
