package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/vine/dsl"
	"github.com/reoring/vine/middleware"
)

func handler(t *testing.T) http.Handler {
	t.Helper()
	c := dsl.MustCompile(dsl.Object(
		dsl.Prop("user_name", dsl.String().MinLength(2)),
	).ToCamelCase())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := middleware.ValidatedFromContext(r.Context())
		if !ok {
			t.Fatalf("validated body missing from context")
		}
		_ = json.NewEncoder(w).Encode(v)
	})
	return middleware.ValidateJSON(c, middleware.Options{MaxBodyBytes: 64})(next)
}

func TestValidateJSON_OK(t *testing.T) {
	rec := httptest.NewRecorder()
	handler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_name":"ada"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"userName":"ada"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestValidateJSON_Issues(t *testing.T) {
	rec := httptest.NewRecorder()
	handler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_name":"a"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Issues []struct {
			Path string `json:"path"`
			Code string `json:"code"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Issues) != 1 || payload.Issues[0].Path != "/user_name" || payload.Issues[0].Code != "too_short" {
		t.Fatalf("unexpected payload %s", rec.Body)
	}
}

func TestValidateJSON_BadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"user_name":`, http.StatusBadRequest},
		{"too large", `{"user_name":"` + strings.Repeat("x", 100) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
