package domain

import "time"

const (
	// DefaultPrefix is the namespace prepended to every key written through the facade.
	// It keeps facade entries apart from other consumers of the same session map.
	DefaultPrefix = "fSession::"

	// DefaultCookieName is the name of the cookie carrying the session identifier.
	DefaultCookieName = "facet_session"

	// CookieExpiryOffset is how far in the past an expired session cookie is dated.
	CookieExpiryOffset = 12 * time.Hour
)
