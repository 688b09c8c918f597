package domain

import "time"

// Record is the persisted form of one session: a flat map shared by every
// consumer of the session, keyed by composite (prefixed) keys.
type Record struct {
	ID        string         `json:"id"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewRecord creates an empty record for the given session ID.
func NewRecord(id string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        id,
		Values:    make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a copy of the record with its own top-level value map.
// Nested values are shared.
func (r *Record) Snapshot() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Values = make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return &out
}
