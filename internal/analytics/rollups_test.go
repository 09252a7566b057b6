package analytics

import (
	"fmt"
	"testing"
	"time"

	"suq-dashboard-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func testCatalog() ([]model.Item, []model.Category) {
	categories := []model.Category{
		{ID: 1, Name: "Beverages"},
		{ID: 2, Name: "Snacks"},
	}
	items := []model.Item{
		{ID: 10, Name: "Coffee", CategoryID: int64Ptr(1)},
		{ID: 11, Name: "Tea", CategoryID: int64Ptr(1)},
		{ID: 12, Name: "Biscuits", CategoryID: int64Ptr(2)},
		{ID: 13, Name: "Candle", CategoryID: nil},
		{ID: 14, Name: "Soap", CategoryID: int64Ptr(99)}, // dangling category ref
	}
	return items, categories
}

func orderWithLines(phone string, lines ...model.OrderLine) model.Order {
	var total float64
	for _, l := range lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return model.Order{
		CustomerName:  "Customer",
		CustomerPhone: phone,
		Lines:         lines,
		Total:         total,
		OrderDate:     time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestComputeAnalyticsTopSellingItems(t *testing.T) {
	items, categories := testCatalog()
	orders := []model.Order{
		orderWithLines("a",
			model.OrderLine{ItemID: 10, Quantity: 2, UnitPrice: 100},
			model.OrderLine{ItemID: 12, Quantity: 1, UnitPrice: 30},
		),
		orderWithLines("b",
			model.OrderLine{ItemID: 10, Quantity: 1, UnitPrice: 100},
			model.OrderLine{ItemID: 11, Quantity: 4, UnitPrice: 20},
		),
	}

	got := ComputeAnalytics(orders, items, categories)

	require.Len(t, got.TopSellingItems, 3)
	top := got.TopSellingItems[0]
	assert.Equal(t, int64(10), top.ItemID)
	assert.Equal(t, "Coffee", top.ItemName)
	assert.Equal(t, "Beverages", top.CategoryName)
	assert.Equal(t, 300.0, top.TotalRevenue)
	assert.Equal(t, int64(3), top.TotalQuantity)

	for i := 1; i < len(got.TopSellingItems); i++ {
		assert.GreaterOrEqual(t,
			got.TopSellingItems[i-1].TotalRevenue,
			got.TopSellingItems[i].TotalRevenue,
			"top selling items must be sorted descending by revenue")
	}
}

func TestComputeAnalyticsTopFiveOnly(t *testing.T) {
	var items []model.Item
	var lines []model.OrderLine
	for i := int64(1); i <= 8; i++ {
		items = append(items, model.Item{ID: i, Name: fmt.Sprintf("Item %d", i)})
		lines = append(lines, model.OrderLine{ItemID: i, Quantity: 1, UnitPrice: float64(i)})
	}

	got := ComputeAnalytics([]model.Order{orderWithLines("a", lines...)}, items, nil)
	assert.Len(t, got.TopSellingItems, 5)
}

func TestComputeAnalyticsUncategorizedFallback(t *testing.T) {
	items, categories := testCatalog()
	orders := []model.Order{
		orderWithLines("a",
			model.OrderLine{ItemID: 13, Quantity: 1, UnitPrice: 10}, // no category
			model.OrderLine{ItemID: 14, Quantity: 1, UnitPrice: 5},  // unresolvable category
		),
	}

	got := ComputeAnalytics(orders, items, categories)

	require.Len(t, got.CategoryAnalytics, 1)
	rollup := got.CategoryAnalytics[0]
	assert.Equal(t, "Uncategorized", rollup.CategoryName)
	assert.Equal(t, int64(2), rollup.TotalItems)
	assert.Equal(t, 15.0, rollup.TotalRevenue)
	assert.Equal(t, 7.5, rollup.AverageOrderValue)
}

func TestComputeAnalyticsSkipsUnknownItems(t *testing.T) {
	items, categories := testCatalog()
	orders := []model.Order{
		orderWithLines("a", model.OrderLine{ItemID: 999, Quantity: 3, UnitPrice: 50}),
	}

	got := ComputeAnalytics(orders, items, categories)

	assert.Empty(t, got.TopSellingItems)
	assert.Empty(t, got.CategoryAnalytics)
	require.Len(t, got.CustomerAnalytics, 1, "customer rollups do not depend on the item join")
}

func TestComputeAnalyticsCustomerRollups(t *testing.T) {
	orders := []model.Order{
		orderWithLines("0911000000", model.OrderLine{ItemID: 10, Quantity: 1, UnitPrice: 100}),
		orderWithLines("0911000000", model.OrderLine{ItemID: 10, Quantity: 1, UnitPrice: 50}),
		orderWithLines("0922000000", model.OrderLine{ItemID: 10, Quantity: 1, UnitPrice: 40}),
	}
	items, categories := testCatalog()

	got := ComputeAnalytics(orders, items, categories)

	require.Len(t, got.CustomerAnalytics, 2)
	first := got.CustomerAnalytics[0]
	assert.Equal(t, "0911000000", first.CustomerID)
	assert.Equal(t, int64(2), first.TotalOrders)
	assert.Equal(t, 150.0, first.TotalAmount)
	assert.Equal(t, 75.0, first.AverageOrderValue)
	assert.Equal(t, "0922000000", got.CustomerAnalytics[1].CustomerID)
}

func TestComputeAnalyticsEmptyInputs(t *testing.T) {
	got := ComputeAnalytics(nil, nil, nil)

	assert.Empty(t, got.TopSellingItems)
	assert.Empty(t, got.CategoryAnalytics)
	assert.Empty(t, got.CustomerAnalytics)
}
