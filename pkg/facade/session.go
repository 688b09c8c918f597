package facade

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/facet/internal/logging"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
)

// Session is a request-scoped, namespaced view over a ports.Backend.
// It is not safe for concurrent use.
type Session struct {
	backend ports.Backend
	open    bool
	prefix  string
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithDefaultPrefix replaces domain.DefaultPrefix for calls that don't pass WithPrefix.
func WithDefaultPrefix(prefix string) Option {
	return func(s *Session) {
		s.prefix = prefix
	}
}

// WithHooks registers lifecycle hooks. Multiple calls accumulate.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a closed Session over backend.
func New(backend ports.Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		prefix:  domain.DefaultPrefix,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsOpen reports whether the session is currently open.
func (s *Session) IsOpen() bool {
	return s.open
}

// ID returns the backend session identifier, or "" when no session is bound.
func (s *Session) ID() string {
	return s.backend.ID()
}

// ConfigureCrossSubdomainScope makes the session cookie valid for the parent domain
// of the current host and all its subdomains, with path "/".
// It must be called before Open. The cookie lifetime is left as configured.
func (s *Session) ConfigureCrossSubdomainScope() error {
	if s.open {
		return s.misuse(context.Background(), "ConfigureCrossSubdomainScope",
			"ConfigureCrossSubdomainScope() must be called before Open()")
	}

	scope := s.backend.CookieScope()
	scope.Path = "/"
	scope.Domain = domain.ParentDomain(s.backend.Host())
	s.backend.SetCookieScope(scope)

	s.logger.Debug("Session cookie scope widened", "domain", scope.Domain)
	return nil
}

// Open starts or resumes the backend session. It is a no-op if already open.
func (s *Session) Open(ctx context.Context) error {
	if s.open {
		return nil
	}
	if err := s.backend.StartOrResume(ctx); err != nil {
		return err
	}
	s.open = true

	s.logger.Debug("Session opened", "session_id", s.backend.ID())
	s.emit(ctx, s.hooks.OnOpen, domain.EventOpen, s.backend.ID())
	return nil
}

// Close writes the session back and releases it for other holders.
// It is a no-op if already closed. The Session ends closed even when the
// backend reports an error, which is returned as-is and carried on the
// close event.
func (s *Session) Close(ctx context.Context) error {
	if !s.open {
		return nil
	}
	id := s.backend.ID()
	err := s.backend.WriteAndRelease(ctx)
	s.open = false

	if err != nil {
		s.logger.Debug("Session closed with write failure", "session_id", id, "err", err)
	} else {
		s.logger.Debug("Session closed", "session_id", id)
	}
	s.emitClosed(ctx, s.hooks.OnClose, domain.EventClose, id, err)
	return err
}

// Destroy erases every value of the session, across all prefixes, expires the
// session cookie if the client sent one, and deletes the server-side record.
// It opens the session first when needed and leaves it closed.
func (s *Session) Destroy(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}

	clear(s.backend.Values())

	if s.backend.HasRequestCookie() {
		scope := s.backend.CookieScope()
		s.backend.ExpireCookie(s.backend.CookieName(), scope.Path, scope.Domain)
	}

	id := s.backend.ID()
	err := s.backend.DestroySession(ctx)
	s.open = false

	if err != nil {
		s.logger.Debug("Session destroy failed", "session_id", id, "err", err)
	} else {
		s.logger.Debug("Session destroyed", "session_id", id)
	}
	s.emitClosed(ctx, s.hooks.OnDestroy, domain.EventDestroy, id, err)
	return err
}

// Set stores value under key in the selected namespace.
func (s *Session) Set(key string, value any, opts ...KeyOption) error {
	if err := s.requireOpen("Set"); err != nil {
		return err
	}
	s.backend.Values()[s.key(key, opts)] = value
	return nil
}

// Get returns the value stored under key, or def when it is not set.
func (s *Session) Get(key string, def any, opts ...KeyOption) (any, error) {
	if err := s.requireOpen("Get"); err != nil {
		return nil, err
	}
	if v, ok := s.backend.Values()[s.key(key, opts)]; ok {
		return v, nil
	}
	return def, nil
}

// GetAll returns every entry of the selected namespace, keyed without the prefix.
func (s *Session) GetAll(opts ...KeyOption) (map[string]any, error) {
	if err := s.requireOpen("GetAll"); err != nil {
		return nil, err
	}
	prefix := s.resolve(opts).prefix

	out := make(map[string]any)
	for k, v := range s.backend.Values() {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out, nil
}

// Delete removes key from the selected namespace. Removing a missing key is a no-op.
func (s *Session) Delete(key string, opts ...KeyOption) error {
	if err := s.requireOpen("Delete"); err != nil {
		return err
	}
	delete(s.backend.Values(), s.key(key, opts))
	return nil
}

func (s *Session) requireOpen(op string) error {
	if s.open {
		return nil
	}
	return s.misuse(context.Background(), op, "Open() must be called before %s()", op)
}

func (s *Session) misuse(ctx context.Context, op, format string, args ...any) error {
	err := domain.NewProgrammerError(op, format, args...)
	s.logger.Error("Session misuse", "op", op, "err", err)
	if s.hooks.OnMisuse != nil {
		e := domain.NewSessionEvent(domain.EventMisuse, s.backend.ID())
		e.Operation = op
		s.hooks.OnMisuse(ctx, e)
	}
	return err
}

func (s *Session) emit(ctx context.Context, hook func(context.Context, *domain.SessionEvent), t domain.EventType, id string) {
	s.emitClosed(ctx, hook, t, id, nil)
}

// emitClosed fires hook for a transition that may have failed. Every Open is
// paired with exactly one close or destroy event, failed or not.
func (s *Session) emitClosed(ctx context.Context, hook func(context.Context, *domain.SessionEvent), t domain.EventType, id string, err error) {
	if hook != nil {
		e := domain.NewSessionEvent(t, id)
		e.Err = err
		hook(ctx, e)
	}
}
