// Package model defines domain entities for the application.
package model

import "time"

// ClaimSet is a decoded bearer token payload. The token signature is
// verified by the upstream gateway; this service only reads claims.
type ClaimSet map[string]any

// UserProfile represents a user account record from the profile store.
// Metadata may carry a tenant_id either directly or nested under
// user_metadata / app_metadata, mirroring the token claim layout.
type UserProfile struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	TenantID  string         `json:"tenant_id"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TenantSource identifies which resolution strategy produced a tenant ID.
type TenantSource string

const (
	TenantSourceClaims  TenantSource = "claims"
	TenantSourceProfile TenantSource = "profile"
	TenantSourceLegacy  TenantSource = "legacy_mapping"
	TenantSourceDefault TenantSource = "default"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID       string       `json:"user_id"`
	Email        string       `json:"email"`
	TenantID     string       `json:"tenant_id"`
	TenantSource TenantSource `json:"tenant_source"`
}

// HasResolvedTenant reports whether the tenant came from a real source
// rather than the configured default fallback.
func (p *Principal) HasResolvedTenant() bool {
	return p.TenantID != "" && p.TenantSource != TenantSourceDefault
}
