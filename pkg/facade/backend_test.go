package facade_test

import (
	"context"
	"maps"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
)

var _ ports.Backend = (*fakeBackend)(nil)

type expiredCookie struct {
	name, path, domain string
}

// fakeBackend keeps a "persisted" map that WriteAndRelease copies into and
// StartOrResume copies out of, like a real session store would.
type fakeBackend struct {
	persisted map[string]any
	values    map[string]any
	started   bool
	id        string

	scope     domain.CookieScope
	host      string
	hasCookie bool
	expired   []expiredCookie

	starts, writes, destroys int
	startErr, writeErr       error
	destroyErr               error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		persisted: make(map[string]any),
		id:        "sid-1",
		host:      "sub.example.com",
		scope:     domain.CookieScope{Path: "/app", Domain: "sub.example.com"},
	}
}

func (b *fakeBackend) StartOrResume(ctx context.Context) error {
	b.starts++
	if b.startErr != nil {
		return b.startErr
	}
	b.started = true
	b.values = maps.Clone(b.persisted)
	return nil
}

func (b *fakeBackend) WriteAndRelease(ctx context.Context) error {
	b.writes++
	b.started = false
	if b.writeErr != nil {
		b.values = nil
		return b.writeErr
	}
	b.persisted = maps.Clone(b.values)
	b.values = nil
	return nil
}

func (b *fakeBackend) DestroySession(ctx context.Context) error {
	b.destroys++
	b.values = nil
	b.started = false
	if b.destroyErr != nil {
		return b.destroyErr
	}
	b.persisted = make(map[string]any)
	return nil
}

func (b *fakeBackend) SetCookieScope(scope domain.CookieScope) { b.scope = scope }
func (b *fakeBackend) CookieScope() domain.CookieScope        { return b.scope }
func (b *fakeBackend) CookieName() string                     { return "facet_session" }
func (b *fakeBackend) HasRequestCookie() bool                 { return b.hasCookie }
func (b *fakeBackend) Values() map[string]any                 { return b.values }
func (b *fakeBackend) Host() string                           { return b.host }
func (b *fakeBackend) ID() string                             { return b.id }

func (b *fakeBackend) ExpireCookie(name, path, domain string) {
	b.expired = append(b.expired, expiredCookie{name, path, domain})
}
