package auth

import "strings"

// Resource names one protected area of the dashboard API. Access is an
// explicit role→resource table rather than a field-presence heuristic, so
// route checks are a lookup, not an inference.
type Resource string

const (
	ResOverview     Resource = "overview"
	ResOrders       Resource = "orders"
	ResItems        Resource = "items"
	ResCategories   Resource = "categories"
	ResBranches     Resource = "branches"
	ResUsers        Resource = "users"
	ResExpenses     Resource = "expenses"
	ResReports      Resource = "reports"
	ResSubscription Resource = "subscription"
)

var roleResources = map[UserRole][]Resource{
	RoleOwner: {
		ResOverview, ResOrders, ResItems, ResCategories, ResBranches,
		ResUsers, ResExpenses, ResReports, ResSubscription,
	},
	RoleAdmin: {
		ResOverview, ResOrders, ResItems, ResCategories, ResBranches,
		ResUsers, ResExpenses, ResReports,
	},
	RoleManager: {
		ResOverview, ResOrders, ResItems, ResCategories, ResExpenses, ResReports,
	},
	RoleSales: {
		ResOverview, ResOrders, ResItems,
	},
	RoleWarehouse: {
		ResItems, ResCategories,
	},
}

var apiResourceMap = map[string]Resource{
	"/api/dashboard/metrics":      ResOverview,
	"/api/dashboard/charts":       ResOverview,
	"/api/dashboard/analytics":    ResOverview,
	"/api/dashboard/export":       ResReports,
	"/api/dashboard/report":       ResReports,
	"/api/dashboard/orders":       ResOrders,
	"/api/dashboard/items":        ResItems,
	"/api/dashboard/categories":   ResCategories,
	"/api/dashboard/branches":     ResBranches,
	"/api/dashboard/users":        ResUsers,
	"/api/dashboard/expenses":     ResExpenses,
	"/api/dashboard/plans":        ResSubscription,
	"/api/dashboard/subscription": ResSubscription,
}

// ResourceForAPI maps a request path onto its protected resource via the
// longest matching prefix. Paths outside the table carry no restriction.
func ResourceForAPI(path string) *Resource {
	var bestPath string
	var bestResource *Resource

	for keyPath, resource := range apiResourceMap {
		if !strings.HasPrefix(path, keyPath) {
			continue
		}
		if bestResource == nil || len(keyPath) > len(bestPath) {
			bestPath = keyPath
			resourceCopy := resource
			bestResource = &resourceCopy
		}
	}

	return bestResource
}

// HasAccess reports whether a role may touch a resource.
func HasAccess(role UserRole, resource Resource) bool {
	for _, allowed := range roleResources[role] {
		if allowed == resource {
			return true
		}
	}
	return false
}
