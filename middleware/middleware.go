// Package middleware validates HTTP request bodies against a compiled
// schema. The net/http adapter lives here; gin and echo adapters are
// separate modules so the core module does not depend on them.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	vine "github.com/reoring/vine"
)

// DefaultMaxBodyBytes bounds request bodies read by Body.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrBodyTooLarge is returned when a body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("middleware: request body too large")

// Validator is satisfied by *dsl.Compiled and *engine.Validator.
type Validator interface {
	ValidateJSON(ctx context.Context, b []byte, meta map[string]any) (any, error)
}

// ctxKeyValidated is a typed context key for the validated body.
type ctxKeyValidated struct{}

// ContextWithValidated attaches the validated body to the context.
func ContextWithValidated(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValidated{}, v)
}

// ValidatedFromContext retrieves the validated body from context.
func ValidatedFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyValidated{})
	return v, v != nil
}

// MetaFunc derives the metadata passed to rules from a request.
type MetaFunc func(r *http.Request) map[string]any

// Options configure body validation. The zero value is usable.
type Options struct {
	MaxBodyBytes int64
	Meta         MetaFunc
}

func (o Options) limit() int64 {
	if o.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return o.MaxBodyBytes
}

// Body reads and validates the request body. Validation failures come back
// as vine.Issues.
func Body(r *http.Request, v Validator, opt Options) (any, error) {
	limit := opt.limit()
	b, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("middleware: read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, ErrBodyTooLarge
	}
	var meta map[string]any
	if opt.Meta != nil {
		meta = opt.Meta(r)
	}
	return v.ValidateJSON(r.Context(), b, meta)
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues vine.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// Failure maps an error from Body to a status code and a JSON payload.
func Failure(err error) (int, any) {
	if iss, ok := vine.AsIssues(err); ok {
		return http.StatusBadRequest, ErrorPayload(iss)
	}
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge, map[string]any{"error": err.Error()}
	}
	return http.StatusBadRequest, map[string]any{"error": err.Error()}
}

// ValidateJSON returns net/http middleware that validates the request body,
// stores the output in the request context and calls next, or responds with
// the failure payload.
func ValidateJSON(v Validator, opt Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out, err := Body(r, v, opt)
			if err != nil {
				status, payload := Failure(err)
				writeJSON(w, status, payload)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValidated(r.Context(), out)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
