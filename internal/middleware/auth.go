package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/propertyflow/propertyflow/internal/auth"
	"github.com/propertyflow/propertyflow/internal/cache"
	"github.com/propertyflow/propertyflow/internal/model"
	"github.com/propertyflow/propertyflow/internal/tenant"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver *tenant.Resolver
	// Cache is optional; when set, tenant resolutions are cached per
	// user so repeated requests skip the profile store.
	Cache *cache.Cache
}

// Auth returns a middleware that builds the request principal.
// The bearer token's signature is verified by the upstream gateway;
// this middleware decodes the claim payload, resolves the tenant, and
// injects a model.Principal into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			decoded, err := auth.DecodeClaims(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "undecodable_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check the resolution cache first
			var res tenant.Resolution
			cacheHit := false
			if cfg.Cache != nil {
				if id, source := cfg.Cache.GetResolvedTenant(r.Context(), decoded.UserID); id != "" {
					res = tenant.Resolution{TenantID: id, Source: source}
					cacheHit = true
				}
			}

			if !cacheHit {
				res = cfg.Resolver.Resolve(r.Context(), decoded.UserID, decoded.Email, decoded.Claims)

				// Only real resolutions are cached; the default
				// fallback stays observable on every request.
				if cfg.Cache != nil && res.Source != model.TenantSourceDefault {
					_ = cfg.Cache.SetResolvedTenant(r.Context(), decoded.UserID, res.TenantID, res.Source)
				}
			}

			principal := &model.Principal{
				UserID:       decoded.UserID,
				Email:        decoded.Email,
				TenantID:     res.TenantID,
				TenantSource: res.Source,
			}

			cfg.Logger.Info("authentication successful",
				slog.String("user_id", principal.UserID),
				slog.String("tenant_id", principal.TenantID),
				slog.String("tenant_source", string(principal.TenantSource)),
				slog.Bool("cache_hit", cacheHit),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth returns a middleware guarding admin endpoints with a
// pre-shared key checked against an argon2id hash from configuration.
// Admin endpoints are disabled entirely when no hash is configured.
func AdminAuth(logger *slog.Logger, keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				http.NotFound(w, r)
				return
			}

			key := r.Header.Get("X-Admin-Key")
			match, err := auth.VerifyAdminKey(key, keyHash)
			if err != nil || !match {
				logger.Warn("admin authentication failed",
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken extracts the bearer token from the request.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing credentials"}}`))
}
