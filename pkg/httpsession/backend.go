package httpsession

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
	"github.com/aretw0/facet/pkg/session"
	"github.com/google/uuid"
)

var _ ports.Backend = (*Backend)(nil)

// Backend is a cookie-transported session bound to one HTTP request.
// It is not safe for concurrent use.
type Backend struct {
	w   http.ResponseWriter
	r   *http.Request
	mgr *session.Manager

	cookieName string
	scope      domain.CookieScope
	secure     bool
	httpOnly   bool
	sameSite   http.SameSite
	newID      func() string
	validID    func(string) bool

	id        string
	record    *domain.Record // nil while not started
	release   session.ReleaseFunc
	destroyed bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(b *Backend) {
		if name != "" {
			b.cookieName = name
		}
	}
}

// WithCookieScope sets the initial cookie lifetime, path and domain.
func WithCookieScope(scope domain.CookieScope) Option {
	return func(b *Backend) {
		b.scope = scope
	}
}

// WithSecure marks issued cookies as Secure (HTTPS only).
func WithSecure(secure bool) Option {
	return func(b *Backend) {
		b.secure = secure
	}
}

// WithSameSite sets the SameSite attribute of issued cookies.
func WithSameSite(mode http.SameSite) Option {
	return func(b *Backend) {
		b.sameSite = mode
	}
}

// WithIDGenerator replaces the UUID session ID generator. valid reports
// whether a cookie value is an ID generate could have produced; other values
// are treated as unknown sessions. A nil valid accepts any non-empty value.
func WithIDGenerator(generate func() string, valid func(string) bool) Option {
	return func(b *Backend) {
		if valid == nil {
			valid = func(string) bool { return true }
		}
		b.newID = generate
		b.validID = valid
	}
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// New creates a Backend for one request.
func New(w http.ResponseWriter, r *http.Request, mgr *session.Manager, opts ...Option) *Backend {
	b := &Backend{
		w:          w,
		r:          r,
		mgr:        mgr,
		cookieName: domain.DefaultCookieName,
		scope:      domain.CookieScope{Path: "/"},
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
		newID:      uuid.NewString,
		validID:    isUUID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StartOrResume binds the session and takes ownership of it.
// The ID already bound to this request wins, then the request cookie (unless the
// session was destroyed during this request). A cookie naming an unknown session is
// replaced by a fresh ID, as is a malformed cookie value, which is never sent to
// the store. Every fresh ID is sent back as a new cookie.
func (b *Backend) StartOrResume(ctx context.Context) error {
	if b.record != nil {
		return nil
	}

	id := b.id
	fromCookie := false
	if id == "" && !b.destroyed {
		if c, err := b.r.Cookie(b.cookieName); err == nil && c.Value != "" && b.validID(c.Value) {
			id = c.Value
			fromCookie = true
		}
	}
	fresh := id == ""
	if fresh {
		id = b.newID()
	}

	release, record, err := b.load(ctx, id)
	if err != nil {
		return err
	}

	if record == nil {
		if fromCookie {
			release(ctx)
			id = b.newID()
			fresh = true
			if release, _, err = b.load(ctx, id); err != nil {
				return err
			}
		}
		record = domain.NewRecord(id)
	}

	if fresh {
		http.SetCookie(b.w, b.cookie(id))
	}

	b.id = id
	b.record = record
	b.release = release
	return nil
}

// load acquires id and reads its record. A nil record means the session does not exist yet.
func (b *Backend) load(ctx context.Context, id string) (session.ReleaseFunc, *domain.Record, error) {
	release, err := b.mgr.Acquire(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	record, err := b.mgr.Store().Load(ctx, id)
	switch {
	case err == nil:
		if record.Values == nil {
			record.Values = make(map[string]any)
		}
		return release, record, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return release, nil, nil
	default:
		release(ctx)
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
}

// WriteAndRelease persists the value map and gives the session back.
// The session is released even when the write fails.
func (b *Backend) WriteAndRelease(ctx context.Context) error {
	if b.record == nil {
		return nil
	}
	defer b.unbind(ctx)

	b.record.UpdatedAt = time.Now().UTC()
	if err := b.mgr.Store().Save(ctx, b.id, b.record); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// DestroySession deletes the record and forgets the session ID for this request.
func (b *Backend) DestroySession(ctx context.Context) error {
	if b.record == nil {
		return nil
	}
	id := b.id
	defer func() {
		b.unbind(ctx)
		b.id = ""
		b.destroyed = true
	}()

	if err := b.mgr.Store().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (b *Backend) unbind(ctx context.Context) {
	if b.release != nil {
		b.release(ctx)
	}
	b.release = nil
	b.record = nil
}

// SetCookieScope configures the attributes of the next issued session cookie.
func (b *Backend) SetCookieScope(scope domain.CookieScope) {
	b.scope = scope
}

// CookieScope returns the current cookie attributes.
func (b *Backend) CookieScope() domain.CookieScope {
	return b.scope
}

// CookieName returns the session cookie name.
func (b *Backend) CookieName() string {
	return b.cookieName
}

// HasRequestCookie reports whether the request carried the session cookie.
func (b *Backend) HasRequestCookie() bool {
	_, err := b.r.Cookie(b.cookieName)
	return err == nil
}

// ExpireCookie tells the client to drop the named cookie.
func (b *Backend) ExpireCookie(name, path, cookieDomain string) {
	http.SetCookie(b.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   cookieDomain,
		Expires:  time.Now().Add(-domain.CookieExpiryOffset),
		MaxAge:   -1,
		Secure:   b.secure,
		HttpOnly: b.httpOnly,
		SameSite: b.sameSite,
	})
}

// Values returns the value map of the started session, or nil when not started.
func (b *Backend) Values() map[string]any {
	if b.record == nil {
		return nil
	}
	return b.record.Values
}

// Host returns the request host without port.
func (b *Backend) Host() string {
	host := b.r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.Trim(host, "[]")
}

// ID returns the bound session ID.
func (b *Backend) ID() string {
	return b.id
}

func (b *Backend) cookie(id string) *http.Cookie {
	c := &http.Cookie{
		Name:     b.cookieName,
		Value:    id,
		Path:     b.scope.Path,
		Domain:   b.scope.Domain,
		Secure:   b.secure,
		HttpOnly: b.httpOnly,
		SameSite: b.sameSite,
	}
	if b.scope.Lifetime > 0 {
		c.MaxAge = int(b.scope.Lifetime / time.Second)
		c.Expires = time.Now().Add(b.scope.Lifetime)
	}
	return c
}
