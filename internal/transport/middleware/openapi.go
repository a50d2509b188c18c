package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/household-expense/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// LoadOpenAPI reads and validates the API document.
func LoadOpenAPI(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document %s: %w", path, err)
	}
	return doc, nil
}

// RequestValidator checks requests under basePath against the document's
// parameters and request bodies. Routes the document does not describe pass
// through untouched. Authentication is left to the auth middleware.
type RequestValidator struct {
	router   routers.Router
	basePath string
	logger   *slog.Logger
}

func NewRequestValidator(doc *openapi3.T, basePath string, logger *slog.Logger) (*RequestValidator, error) {
	// paths are matched after basePath is trimmed, so servers are ignored
	routed := *doc
	routed.Servers = nil
	router, err := legacy.NewRouter(&routed)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{router: router, basePath: strings.TrimSuffix(basePath, "/"), logger: logger}, nil
}

func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, v.basePath+"/") {
			next.ServeHTTP(w, r)
			return
		}

		routed := r.Clone(r.Context())
		routed.URL.Path = strings.TrimPrefix(r.URL.Path, v.basePath)
		routed.URL.RawPath = ""

		route, pathParams, err := v.router.FindRoute(routed)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    routed,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		err = openapi3filter.ValidateRequest(r.Context(), input)
		// the validator may have consumed and replaced the body
		r.Body = routed.Body
		if err != nil {
			v.logger.Warn("request rejected by openapi validation", "path", r.URL.Path, "method", r.Method, "error", err)
			writeValidationError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	message := err.Error()
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		message = reqErr.Error()
		if reqErr.Parameter != nil {
			appErr := errors.NewValidationFieldError(reqErr.Parameter.Name, message, errors.ErrCodeValidationFailed)
			writeAppError(w, appErr)
			return
		}
	}
	writeAppError(w, errors.NewValidationError(message, errors.ErrCodeValidationFailed))
}

func writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
