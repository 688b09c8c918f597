package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSpec(t *testing.T) {
	spec, err := loadSpec()
	require.NoError(t, err)

	item := spec.Paths.Find("/session/{key}")
	require.NotNil(t, item)
	key := item.Parameters.GetByInAndName("path", "key")
	require.NotNil(t, key)
	require.NotNil(t, key.Schema.Value.MaxLength)
	assert.Equal(t, uint64(MaxKeySize), *key.Schema.Value.MaxLength)
}

func TestSessionRoutes_RejectsBadKey(t *testing.T) {
	handler := NewHandler(func(h http.Handler) http.Handler { return h })

	tests := []struct {
		name string
		path string
	}{
		{"too large", "/session/" + strings.Repeat("k", MaxKeySize+1)},
		{"control", "/session/a%00b"},
		{"c1 control", "/session/a%C2%85b"},
		{"invalid utf8", "/session/bad%FF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No session is bound, so reaching Open would answer 500.
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), `\"key\"`)
		})
	}
}

func TestSessionRoutes_AcceptsUnicodeKey(t *testing.T) {
	c, _ := newTestServer(t)

	resp, body := c.do(http.MethodPut, "/session/pr%C3%A9f%C3%A9rence", "oui")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "préférence", body["key"])

	resp, _ = c.do(http.MethodGet, "/session/"+strings.Repeat("k", MaxKeySize), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionRoutes_BadKeyDoesNotOpen(t *testing.T) {
	handler := NewHandler(func(h http.Handler) http.Handler { return h })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/session/a%00b", strings.NewReader(`1`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionRoutes_BodyLimit(t *testing.T) {
	c, _ := newTestServer(t)

	resp, body := c.do(http.MethodPut, "/session/big", strings.Repeat("x", MaxBodySize))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Contains(t, body["error"], "exceeds")

	resp, _ = c.do(http.MethodPut, "/session/small", strings.Repeat("x", 1024))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionRoutes_MissingContentType(t *testing.T) {
	handler := NewHandler(func(h http.Handler) http.Handler { return h })

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/session/k", strings.NewReader(`1`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
