package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/propertyflow/propertyflow/internal/auth"
	"github.com/propertyflow/propertyflow/internal/model"
)

func TestRequireResolvedTenant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		principal  *model.Principal
		wantStatus int
	}{
		{
			name:       "claims-resolved tenant passes",
			principal:  &model.Principal{UserID: "u1", TenantID: "tenant-a", TenantSource: model.TenantSourceClaims},
			wantStatus: http.StatusOK,
		},
		{
			name:       "legacy-resolved tenant passes",
			principal:  &model.Principal{UserID: "u1", TenantID: "tenant-b", TenantSource: model.TenantSourceLegacy},
			wantStatus: http.StatusOK,
		},
		{
			name:       "default fallback is rejected",
			principal:  &model.Principal{UserID: "u1", TenantID: "tenant-a", TenantSource: model.TenantSourceDefault},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "empty tenant is rejected",
			principal:  &model.Principal{UserID: "u1"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no principal is unauthorized",
			principal:  nil,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := RequireResolvedTenant()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", nil)
			if tt.principal != nil {
				req = req.WithContext(auth.ContextWithPrincipal(req.Context(), tt.principal))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
