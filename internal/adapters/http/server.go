// Package http serves a small JSON API over the request session.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/facet/api"
	"github.com/aretw0/facet/internal/logging"
	"github.com/aretw0/facet/pkg/domain"
	"github.com/aretw0/facet/pkg/facade"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

// APIVersion is the version of the route set below.
const APIVersion = "0.1.0"

// Server holds the handlers of the session API.
type Server struct {
	logger  *slog.Logger
	metrics http.Handler
	version string
	spec    *openapi3.T
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the application version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler builds the router. sessions must bind a facade.Session to each
// request context, as httpsession.Middleware does. Session routes are
// validated against api/openapi.yaml before the session is touched.
func NewHandler(sessions func(http.Handler) http.Handler, opts ...Option) http.Handler {
	spec, err := loadSpec()
	if err != nil {
		panic(err)
	}
	s := &Server{
		logger:  logging.NewNop(),
		version: "dev",
		spec:    spec,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.Health)
	r.Get("/info", s.Info)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.validate, sessions)
		r.Get("/session", s.GetAll)
		r.Delete("/session", s.Destroy)
		r.Get("/session/{key}", s.Get)
		r.Put("/session/{key}", s.Set)
		r.Delete("/session/{key}", s.Delete)
	})
	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Facet API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "facet-http",
		"version":     s.version,
		"api_version": APIVersion,
	})
}

// ValuesResponse is the body of GET /session.
type ValuesResponse struct {
	SessionID string         `json:"session_id"`
	Values    map[string]any `json:"values"`
}

// ValueResponse is the body of GET and PUT /session/{key}.
type ValueResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// GetAll handles GET /session.
func (s *Server) GetAll(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.keyOptions(w, r)
	if !ok {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	values, err := sess.GetAll(opts...)
	if err != nil {
		s.fail(w, r, sess, err)
		return
	}
	id := sess.ID()
	if !s.close(w, r, sess) {
		return
	}
	s.writeJSON(w, http.StatusOK, ValuesResponse{SessionID: id, Values: values})
}

// missingValue marks an absent key in Get. No decoded JSON value has this type.
type missingValue struct{}

// Get handles GET /session/{key}.
func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	key, opts, ok := s.keyParams(w, r)
	if !ok {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	v, err := sess.Get(key, missingValue{}, opts...)
	if err != nil {
		s.fail(w, r, sess, err)
		return
	}
	if !s.close(w, r, sess) {
		return
	}
	if _, absent := v.(missingValue); absent {
		s.writeError(w, http.StatusNotFound, "key not found")
		return
	}
	s.writeJSON(w, http.StatusOK, ValueResponse{Key: key, Value: v})
}

// Set handles PUT /session/{key}. The request body is the JSON value.
func (s *Server) Set(w http.ResponseWriter, r *http.Request) {
	key, opts, ok := s.keyParams(w, r)
	if !ok {
		return
	}

	var value any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&value); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", MaxBodySize))
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.Set(key, value, opts...); err != nil {
		s.fail(w, r, sess, err)
		return
	}
	if !s.close(w, r, sess) {
		return
	}
	s.writeJSON(w, http.StatusOK, ValueResponse{Key: key, Value: value})
}

// Delete handles DELETE /session/{key}.
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	key, opts, ok := s.keyParams(w, r)
	if !ok {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.Delete(key, opts...); err != nil {
		s.fail(w, r, sess, err)
		return
	}
	if !s.close(w, r, sess) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Destroy handles DELETE /session.
func (s *Server) Destroy(w http.ResponseWriter, r *http.Request) {
	sess, ok := facade.FromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "no session bound to request")
		return
	}
	if err := sess.Destroy(r.Context()); err != nil {
		s.fail(w, r, sess, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

func (s *Server) keyParams(w http.ResponseWriter, r *http.Request) (string, []facade.KeyOption, bool) {
	key, err := pathKey(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}
	opts, ok := s.keyOptions(w, r)
	return key, opts, ok
}

func (s *Server) keyOptions(w http.ResponseWriter, r *http.Request) ([]facade.KeyOption, bool) {
	prefix, err := prefixParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if prefix == nil {
		return nil, true
	}
	return []facade.KeyOption{facade.WithPrefix(*prefix)}, true
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) (*facade.Session, bool) {
	sess, ok := facade.FromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "no session bound to request")
		return nil, false
	}
	if err := sess.Open(r.Context()); err != nil {
		s.fail(w, r, sess, err)
		return nil, false
	}
	return sess, true
}

// close writes the session back before the response goes out, so a failed
// write is reported to the client.
func (s *Server) close(w http.ResponseWriter, r *http.Request, sess *facade.Session) bool {
	if err := sess.Close(r.Context()); err != nil {
		s.fail(w, r, sess, err)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, sess *facade.Session, err error) {
	if errors.Is(err, domain.ErrProgrammer) {
		s.logger.Error("Session misuse in handler", "path", r.URL.Path, "session_id", sess.ID(), "err", err)
	} else {
		s.logger.Error("Session backend failure", "path", r.URL.Path, "session_id", sess.ID(), "err", err)
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "err", err)
	}
}
