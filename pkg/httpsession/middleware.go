package httpsession

import (
	"context"
	"net/http"

	"github.com/aretw0/facet/pkg/facade"
	"github.com/aretw0/facet/pkg/session"
)

type middlewareConfig struct {
	backendOpts    []Option
	sessionOpts    []facade.Option
	crossSubdomain bool
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithBackendOptions applies opts to every per-request Backend.
func WithBackendOptions(opts ...Option) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.backendOpts = append(c.backendOpts, opts...)
	}
}

// WithSessionOptions applies opts to every per-request facade.Session.
func WithSessionOptions(opts ...facade.Option) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// WithCrossSubdomain scopes session cookies to the parent domain of each request host.
func WithCrossSubdomain() MiddlewareOption {
	return func(c *middlewareConfig) {
		c.crossSubdomain = true
	}
}

// Middleware binds a closed facade.Session to every request.
// Handlers open it when they need it; a session still open when the handler
// returns is closed here so its lock is always released.
func Middleware(mgr *session.Manager, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := mgr.Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			backend := New(w, r, mgr, cfg.backendOpts...)
			s := facade.New(backend, cfg.sessionOpts...)

			if cfg.crossSubdomain {
				if err := s.ConfigureCrossSubdomainScope(); err != nil {
					logger.Error("Failed to configure cross-subdomain cookie scope", "err", err)
				}
			}

			defer func() {
				// The request context may already be canceled; the write-back must still happen.
				ctx := context.WithoutCancel(r.Context())
				id := s.ID()
				if err := s.Close(ctx); err != nil {
					logger.Error("Failed to release session", "session_id", id, "err", err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(facade.NewContext(r.Context(), s)))
		})
	}
}

// FromContext returns the Session bound by Middleware.
func FromContext(ctx context.Context) (*facade.Session, bool) {
	return facade.FromContext(ctx)
}

// FromRequest is FromContext(r.Context()).
func FromRequest(r *http.Request) (*facade.Session, bool) {
	return FromContext(r.Context())
}
