package config

import (
	"os"
	"testing"
)

func TestParseLegacyTenantMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "default migration table",
			raw:  "sunset@propertyflow.com=tenant-a,ocean@propertyflow.com=tenant-b,candidate@propertyflow.com=tenant-a",
			want: map[string]string{
				"sunset@propertyflow.com":    "tenant-a",
				"ocean@propertyflow.com":     "tenant-b",
				"candidate@propertyflow.com": "tenant-a",
			},
		},
		{
			name: "empty map",
			raw:  "",
			want: map[string]string{},
		},
		{
			name: "whitespace around pairs",
			raw:  " a@x.com = tenant-a , b@x.com = tenant-b ",
			want: map[string]string{
				"a@x.com": "tenant-a",
				"b@x.com": "tenant-b",
			},
		},
		{
			name: "trailing comma tolerated",
			raw:  "a@x.com=tenant-a,",
			want: map[string]string{"a@x.com": "tenant-a"},
		},
		{
			name:    "missing separator",
			raw:     "a@x.com",
			wantErr: true,
		},
		{
			name:    "empty tenant value",
			raw:     "a@x.com=",
			wantErr: true,
		},
		{
			name:    "empty email",
			raw:     "=tenant-a",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{LegacyTenantMap: tt.raw}
			got, err := cfg.ParseLegacyTenantMap()

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for email, tenant := range tt.want {
				if got[email] != tenant {
					t.Errorf("mapping[%q] = %q, want %q", email, got[email], tenant)
				}
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/propertyflow_test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DefaultTenantID != "tenant-a" {
		t.Errorf("DefaultTenantID = %q, want tenant-a", cfg.DefaultTenantID)
	}
	if cfg.RevenueCacheTTL.Minutes() != 5 {
		t.Errorf("RevenueCacheTTL = %s, want 5m", cfg.RevenueCacheTTL)
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled should default to true")
	}
	if cfg.AdminAPIKeyHash != "" {
		t.Error("AdminAPIKeyHash should default to empty")
	}

	mapping, err := cfg.ParseLegacyTenantMap()
	if err != nil {
		t.Fatalf("parse default legacy map: %v", err)
	}
	if mapping["ocean@propertyflow.com"] != "tenant-b" {
		t.Errorf("default legacy map missing ocean entry: %v", mapping)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty,
	// for the required check to trip.
	t.Setenv("DATABASE_URL", "x")
	t.Setenv("REDIS_URL", "x")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("REDIS_URL")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when required variables are missing")
	}
}
