package cache

import (
	"testing"
)

func TestRevenueKey_TenantScoped(t *testing.T) {
	t.Parallel()

	key := revenueKey("prop-1", "tenant-a")
	if key != "revenue:8:tenant-a:prop-1" {
		t.Errorf("key = %q, want revenue:8:tenant-a:prop-1", key)
	}
}

func TestRevenueKey_CollidingPropertyIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		aProp   string
		aTenant string
		bProp   string
		bTenant string
	}{
		{"same property different tenants", "prop-1", "tenant-a", "prop-1", "tenant-b"},
		{"different properties same tenant", "prop-1", "tenant-a", "prop-2", "tenant-a"},
		{"swapped property and tenant", "prop-1", "tenant-a", "tenant-a", "prop-1"},
		{"delimiter in tenant vs delimiter in property", "c", "a:b", "b:c", "a"},
		{"tenant absorbing the delimiter", "1", "tenant-a:prop", "prop:1", "tenant-a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := revenueKey(tt.aProp, tt.aTenant)
			b := revenueKey(tt.bProp, tt.bTenant)
			if a == b {
				t.Errorf("keys must differ: %q and %q both produced %s", tt.aProp, tt.bProp, a)
			}
		})
	}
}
