package ports

import (
	"context"

	"github.com/aretw0/facet/pkg/domain"
)

// Backend is the host session subsystem that the facade drives.
// One Backend serves one request; it is not safe for concurrent use.
type Backend interface {
	// StartOrResume begins a session, binding it to the identifier carried by the session cookie.
	StartOrResume(ctx context.Context) error

	// WriteAndRelease persists pending changes and releases the session for other holders.
	WriteAndRelease(ctx context.Context) error

	// DestroySession deletes the server-side session record entirely.
	DestroySession(ctx context.Context) error

	// SetCookieScope configures the cookie attributes used on the next session start.
	SetCookieScope(scope domain.CookieScope)

	// CookieScope reads the current cookie attribute configuration.
	CookieScope() domain.CookieScope

	// CookieName is the name of the cookie transporting the session identifier.
	CookieName() string

	// HasRequestCookie reports whether the incoming request carried the session cookie.
	HasRequestCookie() bool

	// ExpireCookie issues a response cookie with an already-past expiry to delete it client-side.
	ExpireCookie(name, path, domain string)

	// Values is the mutable value map of the started session, shared by all its consumers.
	Values() map[string]any

	// Host is the current request's host name, without port.
	Host() string

	// ID is the identifier of the started session, or "" when none is bound.
	ID() string
}
