package facet

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/facet/internal/logging"
	"github.com/aretw0/facet/pkg/adapters/memory"
	"github.com/aretw0/facet/pkg/adapters/redis"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/facade"
	"github.com/aretw0/facet/pkg/httpsession"
	"github.com/aretw0/facet/pkg/persistence/middleware"
	"github.com/aretw0/facet/pkg/ports"
	"github.com/aretw0/facet/pkg/session"
)

// Facet wires a record store, session locking and the HTTP middleware together.
type Facet struct {
	store   ports.RecordStore
	locker  ports.DistributedLocker
	manager *session.Manager
	closers []func() error

	encryption     *middleware.EncryptionConfig
	lockTTL        time.Duration
	logger         *slog.Logger
	hooks          domain.LifecycleHooks
	prefix         string
	backendOpts    []httpsession.Option
	crossSubdomain bool
}

// Option configures a Facet.
type Option func(*Facet)

// WithStore sets the record store (default: in memory).
func WithStore(store ports.RecordStore) Option {
	return func(f *Facet) {
		f.store = store
	}
}

// WithRedis stores records in Redis and locks sessions across instances.
// The store is closed by Facet.Close.
func WithRedis(store *redis.Store) Option {
	return func(f *Facet) {
		f.store = store
		f.locker = redis.NewLocker(store.Client(), store.Prefix())
		f.closers = append(f.closers, store.Close)
	}
}

// WithLocker sets a distributed lock taken in addition to the in-process one.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(f *Facet) {
		f.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(f *Facet) {
		f.lockTTL = ttl
	}
}

// WithEncryption seals record values at rest.
func WithEncryption(config middleware.EncryptionConfig) Option {
	return func(f *Facet) {
		f.encryption = &config
	}
}

// WithLifecycleHooks registers observability hooks on every request session.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Facet) {
		f.hooks = f.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facet) {
		f.logger = logger
	}
}

// WithDefaultPrefix sets the namespace used when a call names none.
func WithDefaultPrefix(prefix string) Option {
	return func(f *Facet) {
		f.prefix = prefix
	}
}

// WithCookie applies cookie options to every request backend.
func WithCookie(opts ...httpsession.Option) Option {
	return func(f *Facet) {
		f.backendOpts = append(f.backendOpts, opts...)
	}
}

// WithCrossSubdomain shares the session cookie with every subdomain of the request host.
func WithCrossSubdomain() Option {
	return func(f *Facet) {
		f.crossSubdomain = true
	}
}

// New initializes a Facet.
func New(opts ...Option) (*Facet, error) {
	f := &Facet{
		logger: logging.NewNop(),
		prefix: domain.DefaultPrefix,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.store == nil {
		f.store = memory.NewStore()
	}
	if f.encryption != nil {
		mw, err := middleware.NewEncryptionMiddleware(*f.encryption)
		if err != nil {
			return nil, err
		}
		f.store = mw(f.store)
	}

	managerOpts := []session.Option{session.WithLogger(f.logger)}
	if f.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(f.locker))
	}
	if f.lockTTL > 0 {
		managerOpts = append(managerOpts, session.WithLockTTL(f.lockTTL))
	}
	f.manager = session.NewManager(f.store, managerOpts...)

	return f, nil
}

// Middleware binds a closed facade.Session to every request. See httpsession.Middleware.
func (f *Facet) Middleware() func(http.Handler) http.Handler {
	opts := []httpsession.MiddlewareOption{
		httpsession.WithBackendOptions(f.backendOpts...),
		httpsession.WithSessionOptions(
			facade.WithDefaultPrefix(f.prefix),
			facade.WithHooks(f.hooks),
			facade.WithLogger(f.logger),
		),
	}
	if f.crossSubdomain {
		opts = append(opts, httpsession.WithCrossSubdomain())
	}
	return httpsession.Middleware(f.manager, opts...)
}

// Manager returns the session manager.
func (f *Facet) Manager() *session.Manager {
	return f.manager
}

// Store returns the record store, including any encryption layer.
func (f *Facet) Store() ports.RecordStore {
	return f.store
}

// Close releases resources owned by the Facet.
func (f *Facet) Close() error {
	var errs []error
	for _, c := range f.closers {
		errs = append(errs, c())
	}
	f.closers = nil
	return errors.Join(errs...)
}
