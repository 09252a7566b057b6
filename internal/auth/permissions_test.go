package auth

import "testing"

func TestResourceForAPI(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		expected Resource
		none     bool
	}{
		{name: "orders collection", path: "/api/dashboard/orders", expected: ResOrders},
		{name: "order detail", path: "/api/dashboard/orders/42/status", expected: ResOrders},
		{name: "metrics", path: "/api/dashboard/metrics", expected: ResOverview},
		{name: "branch export", path: "/api/dashboard/branches/export", expected: ResBranches},
		{name: "unmapped", path: "/api/auth/login", none: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResourceForAPI(tc.path)
			if tc.none {
				if got != nil {
					t.Fatalf("expected no resource, got %s", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %s, got nil", tc.expected)
			}
			if *got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, *got)
			}
		})
	}
}

func TestHasAccess(t *testing.T) {
	if !HasAccess(RoleOwner, ResSubscription) {
		t.Fatal("owner must access subscription")
	}
	if HasAccess(RoleAdmin, ResSubscription) {
		t.Fatal("admin must not access subscription")
	}
	if HasAccess(RoleSales, ResUsers) {
		t.Fatal("sales must not access users")
	}
	if !HasAccess(RoleWarehouse, ResItems) {
		t.Fatal("warehouse must access items")
	}
	if HasAccess(RoleWarehouse, ResOrders) {
		t.Fatal("warehouse must not access orders")
	}
}
