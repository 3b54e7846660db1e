package model

import "time"

// Property represents a rental property owned by a tenant. The
// (ID, TenantID) pair is the unit of identity; property IDs alone are
// not unique across tenants.
type Property struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
