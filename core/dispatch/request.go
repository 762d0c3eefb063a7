package dispatch

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PatrickOgilvie/honertia/core/apperr"
	"github.com/PatrickOgilvie/honertia/core/binding"
	"github.com/PatrickOgilvie/honertia/core/capability"
)

// Request outcomes, recorded in logs and metrics.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeAppError = "app_error"
	outcomeFault    = "fault"
)

// dispatch builds the per-request handler for one compiled route. Each
// invocation walks the full lifecycle: decode params, resolve bindings,
// compose capabilities, execute, respond, tear down. Teardown runs exactly
// once on every exit path, including panic.
func (reg *Registry) dispatch(rt *compiledRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		logger := reg.logger.With().
			Str("request_id", requestID).
			Str("method", rt.method).
			Str("pattern", rt.pattern.Raw).
			Logger()

		if reg.cfg.Metrics != nil {
			reg.cfg.Metrics.RequestsInFlight.Inc()
		}

		outcome := outcomeOK
		var caps *capability.Set

		defer func() {
			if p := recover(); p != nil {
				outcome = outcomeFault
				logger.Error().Any("panic", p).Msg("handler panicked")
				writeFault(w)
			}
			if caps != nil {
				caps.Close()
			}
			if reg.cfg.Metrics != nil {
				reg.cfg.Metrics.Teardowns.Inc()
				reg.cfg.Metrics.RequestsInFlight.Dec()
				reg.cfg.Metrics.RequestsTotal.WithLabelValues(rt.method, rt.pattern.Raw, outcome).Inc()
				reg.cfg.Metrics.RequestDuration.WithLabelValues(rt.method, rt.pattern.Raw).Observe(time.Since(start).Seconds())
			}
			logger.Debug().
				Str("outcome", outcome).
				Dur("elapsed", time.Since(start)).
				Msg("request torn down")
		}()

		params := make(map[string]string, len(rt.pattern.Bindings))
		for _, b := range rt.pattern.Bindings {
			params[b.Param] = chi.URLParam(r, b.Param)
		}

		if rt.opts.paramSchema != nil {
			decoded, err := rt.opts.paramSchema.Decode(params)
			if err != nil {
				// Validation failures are indistinguishable from missing
				// resources on the wire.
				outcome = outcomeNotFound
				logger.Debug().Err(err).Msg("parameter validation failed")
				writeNotFound(w)
				return
			}
			params = decoded
		}

		var models *binding.ModelSet
		switch {
		case len(rt.pattern.Bindings) == 0:
			models = binding.NewModelSet(nil)
		case reg.resolver == nil:
			// Pattern declares bindings but no schema or querier was
			// configured. The request proceeds; accessing a bound model
			// surfaces the configuration error.
			models = binding.Unresolved(&apperr.ConfigurationError{
				Capability: "models",
				Remedy:     "configure a schema map and querier on the dispatch registry",
			})
		default:
			resolved, err := reg.resolver.Resolve(r.Context(), rt.pattern.Bindings, params)
			if errors.Is(err, binding.ErrNotFound) {
				outcome = outcomeNotFound
				if reg.cfg.Metrics != nil {
					reg.cfg.Metrics.BindingFailures.WithLabelValues(rt.pattern.Raw).Inc()
				}
				writeNotFound(w)
				return
			}
			if err != nil {
				outcome = outcomeFault
				logger.Error().Err(err).Msg("binding resolution failed")
				writeFault(w)
				return
			}
			models = resolved
		}

		base := reg.baseProviders(w, r)
		caps = capability.Compose(base, models, rt.providers, reg.cfg.AppProviders)

		if err := rt.handler(r.Context(), caps); err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				outcome = outcomeAppError
				logger.Debug().Err(err).Int("status", appErr.Status).Msg("handler returned application error")
				reg.cfg.ErrorMapper(w, r, appErr)
				return
			}
			outcome = outcomeFault
			logger.Error().Err(err).Msg("handler failed")
			writeFault(w)
		}
	}
}

// baseProviders assembles the always-present capability layer for one
// request. Unconfigured infrastructure stays present under its key so that
// access yields a remedy instead of a nil dereference.
func (reg *Registry) baseProviders(w http.ResponseWriter, r *http.Request) []capability.Entry {
	entries := []capability.Entry{
		capability.Provide(capability.KeyRequest, r),
		capability.Provide(capability.KeyResponder, reg.cfg.Responder(w, r)),
	}

	if reg.cfg.Renderer != nil {
		entries = append(entries, capability.Provide(capability.KeyRenderer, reg.cfg.Renderer(w)))
	}

	if reg.cfg.Database != nil {
		entries = append(entries, capability.Provide(capability.KeyDB, reg.cfg.Database))
	} else {
		entries = append(entries, capability.Provide(capability.KeyDB, capability.Unconfigured{
			Capability: capability.KeyDB,
			Remedy:     "set database.path in the configuration file",
		}))
	}

	if reg.cfg.Auth != nil {
		entries = append(entries, capability.Provide(capability.KeyAuth, reg.cfg.Auth))
		if user, err := reg.cfg.Auth.Verify(r); err == nil {
			entries = append(entries, capability.Provide(capability.KeyAuthUser, user))
		}
	} else {
		entries = append(entries, capability.Provide(capability.KeyAuth, capability.Unconfigured{
			Capability: capability.KeyAuth,
			Remedy:     "set auth.jwt_secret in the configuration file",
		}))
	}

	return entries
}
