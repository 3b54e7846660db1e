// Package auth provides principal handling and claim decoding for
// requests authenticated by the upstream gateway.
package auth

import (
	"context"

	"github.com/propertyflow/propertyflow/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// principalKey is the context key for storing the Principal.
	principalKey contextKey = "principal"
)

// ContextWithPrincipal adds a Principal to the context.
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the Principal from the context.
// Returns nil if not present.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, ok := ctx.Value(principalKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

// MustPrincipalFromContext retrieves the Principal from the context.
// Panics if not present (use only when auth middleware has run).
func MustPrincipalFromContext(ctx context.Context) *model.Principal {
	p := PrincipalFromContext(ctx)
	if p == nil {
		panic("principal not found - ensure auth middleware is applied")
	}
	return p
}

// TenantIDFromContext is a convenience function to get the tenant ID.
// Returns empty string if not authenticated.
func TenantIDFromContext(ctx context.Context) string {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return ""
	}
	return p.TenantID
}
