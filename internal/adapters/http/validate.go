package http

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/facet/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

const (
	// MaxKeySize bounds session keys taken from the URL. It mirrors the
	// maxLength of the key parameter in api/openapi.yaml.
	MaxKeySize = 256
	// MaxBodySize bounds the JSON value accepted by PUT /session/{key}.
	MaxBodySize = 64 << 10
)

// loadSpec parses and validates the embedded OpenAPI document once.
var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
})

// validate checks a routed request against the operation chi matched, so a
// bad key or body never opens the session. It must run inside a chi group.
func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		item := s.spec.Paths.Find(pattern)
		if item == nil || item.GetOperation(r.Method) == nil {
			next.ServeHTTP(w, r)
			return
		}

		params := map[string]string{}
		if chi.URLParam(r, "key") != "" {
			key, err := pathKey(r)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			params["key"] = key
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route: &routers.Route{
				Spec:      s.spec,
				Path:      pattern,
				PathItem:  item,
				Method:    r.Method,
				Operation: item.GetOperation(r.Method),
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", MaxBodySize))
				return
			}
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pathKey binds the {key} segment. chi returns the escaped segment only when
// the URL carries a RawPath, and only then does it need unescaping.
func pathKey(r *http.Request) (string, error) {
	location := runtime.ParamLocationUndefined
	if r.URL.RawPath != "" {
		location = runtime.ParamLocationPath
	}
	var key string
	err := runtime.BindStyledParameterWithOptions("simple", "key", chi.URLParam(r, "key"), &key,
		runtime.BindStyledParameterOptions{ParamLocation: location, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter key: %w", err)
	}
	return key, nil
}

// prefixParam binds the optional ?prefix= query parameter.
func prefixParam(r *http.Request) (*string, error) {
	var prefix *string
	if err := runtime.BindQueryParameter("form", true, false, "prefix", r.URL.Query(), &prefix); err != nil {
		return nil, fmt.Errorf("invalid format for parameter prefix: %w", err)
	}
	return prefix, nil
}
