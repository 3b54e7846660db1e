// Package tenant resolves the tenant identity for authenticated users.
//
// Resolution is deliberately infallible: every user maps to exactly one
// tenant, falling back to a configured default rather than blocking
// authentication on missing metadata. Callers that need to fail closed
// use ResolveStrict.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/propertyflow/propertyflow/internal/metrics"
	"github.com/propertyflow/propertyflow/internal/model"
)

// Resolver errors.
var (
	ErrNoTenantFound = errors.New("no tenant found for user")
	ErrEmptyTenantID = errors.New("tenant ID must not be empty")
	ErrTimeout       = errors.New("profile store timed out")
)

// ProfileStore abstracts the user profile store.
type ProfileStore interface {
	// GetProfile returns the profile for a user ID.
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	// UpdateTenantMetadata persists the tenant ID into the profile
	// metadata with a single conditional update. Writing an already
	// present identical value is a no-op.
	UpdateTenantMetadata(ctx context.Context, userID, tenantID string) error
}

// Resolution is the outcome of a tenant lookup. Source records which
// strategy produced the tenant so the default path stays observable.
type Resolution struct {
	TenantID string
	Source   model.TenantSource
}

// Resolver maps authenticated identities to tenant IDs.
//
// The legacy mapping is an immutable table injected at construction;
// all methods are safe for concurrent use.
type Resolver struct {
	profiles      ProfileStore
	legacyMapping map[string]string
	defaultTenant string
	storeTimeout  time.Duration
	logger        *slog.Logger
	metrics       metrics.Recorder
}

// NewResolver creates a Resolver. profiles may be nil, in which case the
// profile short-circuit and metadata write-back are skipped.
func NewResolver(profiles ProfileStore, legacyMapping map[string]string, defaultTenant string, storeTimeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Resolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	if legacyMapping == nil {
		legacyMapping = map[string]string{}
	}
	return &Resolver{
		profiles:      profiles,
		legacyMapping: legacyMapping,
		defaultTenant: defaultTenant,
		storeTimeout:  storeTimeout,
		logger:        logger,
		metrics:       recorder,
	}
}

// ResolveFromClaims extracts a tenant ID from a decoded token claim set.
// Precedence: user_metadata.tenant_id, then app_metadata.tenant_id, then
// the root-level tenant_id. First non-empty match wins; empty or
// whitespace values are treated as absent.
func (r *Resolver) ResolveFromClaims(claims model.ClaimSet) (string, bool) {
	if claims == nil {
		return "", false
	}

	if id := nestedTenantID(claims, "user_metadata"); id != "" {
		return id, true
	}

	if id := nestedTenantID(claims, "app_metadata"); id != "" {
		return id, true
	}

	if id := stringValue(claims, "tenant_id"); id != "" {
		return id, true
	}

	r.logger.Warn("no tenant_id found in token claims")
	return "", false
}

// ResolveFromProfile extracts a tenant ID from a user profile. The
// direct TenantID field takes priority, then the same metadata
// precedence used for claims.
func (r *Resolver) ResolveFromProfile(profile *model.UserProfile) (string, bool) {
	if profile == nil {
		return "", false
	}

	if id := strings.TrimSpace(profile.TenantID); id != "" {
		return id, true
	}

	if id := nestedTenantID(profile.Metadata, "user_metadata"); id != "" {
		return id, true
	}

	if id := nestedTenantID(profile.Metadata, "app_metadata"); id != "" {
		return id, true
	}

	return "", false
}

// Resolve maps a user to a tenant ID. It never fails: claims, then the
// profile store, then the legacy email mapping, then the configured
// default. A tenant learned from the legacy mapping is written back to
// the profile asynchronously so future requests short-circuit.
func (r *Resolver) Resolve(ctx context.Context, userID, email string, claims model.ClaimSet) Resolution {
	if id, ok := r.ResolveFromClaims(claims); ok {
		r.metrics.IncTenantResolved(string(model.TenantSourceClaims))
		return Resolution{TenantID: id, Source: model.TenantSourceClaims}
	}

	if r.profiles != nil && userID != "" {
		profileCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
		profile, err := r.profiles.GetProfile(profileCtx, userID)
		cancel()

		if err != nil {
			// Profile store trouble must not block authentication.
			r.logger.Warn("profile lookup failed during tenant resolution",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		} else if id, ok := r.ResolveFromProfile(profile); ok {
			r.metrics.IncTenantResolved(string(model.TenantSourceProfile))
			return Resolution{TenantID: id, Source: model.TenantSourceProfile}
		}
	}

	if id, ok := r.legacyMapping[email]; ok {
		r.metrics.IncTenantResolved(string(model.TenantSourceLegacy))
		r.persistAsync(userID, id)
		return Resolution{TenantID: id, Source: model.TenantSourceLegacy}
	}

	r.logger.Warn("tenant resolution fell back to default tenant",
		slog.String("user_id", userID),
	)
	r.metrics.IncTenantResolved(string(model.TenantSourceDefault))
	return Resolution{TenantID: r.defaultTenant, Source: model.TenantSourceDefault}
}

// ResolveStrict is the failing-closed variant of Resolve: it returns
// ErrNoTenantFound instead of the default tenant when no real source
// yields a value.
func (r *Resolver) ResolveStrict(ctx context.Context, userID, email string, claims model.ClaimSet) (Resolution, error) {
	res := r.Resolve(ctx, userID, email, claims)
	if res.Source == model.TenantSourceDefault {
		return Resolution{}, fmt.Errorf("user %s: %w", userID, ErrNoTenantFound)
	}
	return res, nil
}

// UpdateProfileTenantMetadata persists a resolved tenant onto the user
// profile so later resolutions short-circuit via ResolveFromProfile.
// Idempotent; write failures propagate since a lost write means future
// requests re-run the whole fallback chain.
func (r *Resolver) UpdateProfileTenantMetadata(ctx context.Context, userID, tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrEmptyTenantID
	}
	if r.profiles == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	if err := r.profiles.UpdateTenantMetadata(ctx, userID, tenantID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("update tenant metadata for user %s: %w", userID, ErrTimeout)
		}
		return fmt.Errorf("update tenant metadata for user %s: %w", userID, err)
	}

	return nil
}

// persistAsync writes a legacy-mapped tenant back to the profile without
// blocking the request. Uses a background context so the write survives
// the caller's cancellation.
func (r *Resolver) persistAsync(userID, tenantID string) {
	if r.profiles == nil || userID == "" {
		return
	}

	go func() {
		if err := r.UpdateProfileTenantMetadata(context.Background(), userID, tenantID); err != nil {
			r.logger.Warn("tenant metadata write-back failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// stringValue returns a trimmed string value for key, or "" when the
// key is absent or not a string.
func stringValue(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// nestedTenantID reads section.tenant_id from a claim or metadata map.
func nestedTenantID(m map[string]any, section string) string {
	nested, ok := m[section].(map[string]any)
	if !ok {
		return ""
	}
	return stringValue(nested, "tenant_id")
}
