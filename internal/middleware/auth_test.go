package middleware

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/propertyflow/propertyflow/internal/auth"
	"github.com/propertyflow/propertyflow/internal/metrics"
	"github.com/propertyflow/propertyflow/internal/model"
	"github.com/propertyflow/propertyflow/internal/tenant"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthMiddleware() func(http.Handler) http.Handler {
	legacy := map[string]string{"ocean@propertyflow.com": "tenant-b"}
	resolver := tenant.NewResolver(nil, legacy, "tenant-a", time.Second, discardLogger(), metrics.NewNoop())
	return Auth(AuthConfig{
		Logger:   discardLogger(),
		Resolver: resolver,
	})
}

func TestAuth_InjectsPrincipal(t *testing.T) {
	t.Parallel()

	var got *model.Principal
	handler := newAuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := makeToken(t, map[string]any{
		"sub":   "user-1",
		"email": "user@example.com",
		"app_metadata": map[string]any{
			"tenant_id": "tenant-c",
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil {
		t.Fatal("principal missing from context")
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", got.UserID)
	}
	if got.TenantID != "tenant-c" {
		t.Errorf("TenantID = %q, want tenant-c", got.TenantID)
	}
	if got.TenantSource != model.TenantSourceClaims {
		t.Errorf("TenantSource = %q, want claims", got.TenantSource)
	}
}

func TestAuth_LegacyEmailResolution(t *testing.T) {
	t.Parallel()

	var got *model.Principal
	handler := newAuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.PrincipalFromContext(r.Context())
	}))

	token := makeToken(t, map[string]any{
		"sub":   "user-legacy",
		"email": "ocean@propertyflow.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("principal missing from context")
	}
	if got.TenantID != "tenant-b" {
		t.Errorf("TenantID = %q, want tenant-b", got.TenantID)
	}
	if got.TenantSource != model.TenantSourceLegacy {
		t.Errorf("TenantSource = %q, want legacy_mapping", got.TenantSource)
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"undecodable token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := newAuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"extra whitespace", "Bearer   abc.def.ghi  ", "abc.def.ghi"},
		{"no header", "", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"bearer lowercase", "bearer abc", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashAdminKey("correct-admin-key")
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}

	tests := []struct {
		name       string
		keyHash    string
		presented  string
		wantStatus int
	}{
		{"correct key", hash, "correct-admin-key", http.StatusOK},
		{"wrong key", hash, "wrong-key", http.StatusUnauthorized},
		{"missing key", hash, "", http.StatusUnauthorized},
		{"no hash configured hides the route", "", "correct-admin-key", http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := AdminAuth(discardLogger(), tt.keyHash)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/invalidate", nil)
			if tt.presented != "" {
				req.Header.Set("X-Admin-Key", tt.presented)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
