package domain

import (
	"regexp"
	"time"
)

// CookieScope holds the attributes applied to the session cookie when it is issued.
type CookieScope struct {
	// Lifetime of the cookie. Zero means a browser-session cookie.
	Lifetime time.Duration `json:"lifetime" yaml:"lifetime"`
	Path     string        `json:"path" yaml:"path"`
	Domain   string        `json:"domain" yaml:"domain"`
}

var parentDomainPattern = regexp.MustCompile(`(?i)^.*?([a-z0-9\-]+\.[a-z]+)$`)

// ParentDomain returns the cookie domain covering host and all its sibling subdomains.
// "sub.example.com" and "example.com" both yield ".example.com".
// Hosts without a registrable-looking suffix (localhost, IP literals) are returned unchanged.
func ParentDomain(host string) string {
	return parentDomainPattern.ReplaceAllString(host, ".$1")
}
