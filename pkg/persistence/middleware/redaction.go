package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/ports"
)

// RedactedValue replaces the value of every redacted key.
const RedactedValue = "***"

// Redactor masks the values of keys matching any of its patterns, nested maps
// included.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles patterns.
func NewRedactor(patterns []string) (*Redactor, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return &Redactor{patterns: compiled}, nil
}

// Redact returns a copy of record with matching values masked. The input is
// left untouched, since stores may hand out shared maps.
func (r *Redactor) Redact(record *domain.Record) *domain.Record {
	masked := *record
	masked.Values = r.mask(record.Values)
	return &masked
}

// Middleware returns a Middleware that applies Redact on every Load.
func (r *Redactor) Middleware() Middleware {
	return func(next ports.RecordStore) ports.RecordStore {
		return &redactionMiddleware{next: next, redactor: r}
	}
}

// NewRedactionMiddleware returns a Middleware that masks, on Load, the values of keys
// matching any of patterns. Saves pass through untouched, so the decorated store is
// meant for inspection tools, not for serving requests.
func NewRedactionMiddleware(patterns []string) (Middleware, error) {
	r, err := NewRedactor(patterns)
	if err != nil {
		return nil, err
	}
	return r.Middleware(), nil
}

type redactionMiddleware struct {
	next     ports.RecordStore
	redactor *Redactor
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Record, error) {
	record, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.redactor.Redact(record), nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, record *domain.Record) error {
	return m.next.Save(ctx, sessionID, record)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// mask returns a copy of values with matching keys replaced.
func (r *Redactor) mask(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch {
		case r.matches(k):
			out[k] = RedactedValue
		default:
			if sub, ok := v.(map[string]any); ok {
				out[k] = r.mask(sub)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func (r *Redactor) matches(key string) bool {
	for _, p := range r.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
