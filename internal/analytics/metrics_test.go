package analytics

import (
	"testing"
	"time"

	"suq-dashboard-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 15, 18, 30, 0, 0, time.UTC)

func order(total float64, phone string, date time.Time) model.Order {
	return model.Order{
		CustomerName:  "Customer",
		CustomerPhone: phone,
		Total:         total,
		OrderDate:     date,
		Status:        model.OrderCompleted,
		PaymentStatus: model.PaymentPaid,
	}
}

func TestComputeMetricsSameDayOrders(t *testing.T) {
	orders := []model.Order{
		order(100, "0911000000", testNow.Add(-2*time.Hour)),
		order(50, "0911000000", testNow.Add(-1*time.Hour)),
	}

	m := ComputeMetrics(orders, TimeframeToday, testNow)

	assert.Equal(t, 150.0, m.TotalRevenue)
	assert.Equal(t, 1, m.UniqueCustomers)
	assert.Equal(t, 75.0, m.AverageOrderValue)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil, TimeframeMonth, testNow)

	assert.Zero(t, m.TotalRevenue)
	assert.Zero(t, m.UniqueCustomers)
	assert.Zero(t, m.AverageOrderValue)
	assert.Zero(t, m.Growth)
}

func TestComputeMetricsUniqueCustomersByPhone(t *testing.T) {
	orders := []model.Order{
		order(10, "0911000000", testNow),
		order(20, "0911000000", testNow),
		order(30, "0922000000", testNow),
	}
	orders[0].CustomerName = "Abebe"
	orders[1].CustomerName = "Almaz"

	m := ComputeMetrics(orders, TimeframeToday, testNow)
	assert.Equal(t, 2, m.UniqueCustomers)
}

func TestComputeMetricsGrowth(t *testing.T) {
	orders := []model.Order{
		order(300, "a", testNow.AddDate(0, 0, -2)),  // current week
		order(100, "b", testNow.AddDate(0, 0, -10)), // previous week
	}

	m := ComputeMetrics(orders, TimeframeWeek, testNow)
	assert.InDelta(t, 200.0, m.Growth, 1e-9)
}

func TestComputeMetricsGrowthZeroPreviousRevenue(t *testing.T) {
	orders := []model.Order{order(500, "a", testNow.Add(-time.Hour))}

	m := ComputeMetrics(orders, TimeframeWeek, testNow)
	assert.Zero(t, m.Growth, "growth must be 0 when the previous period had no revenue")
}

func TestComputeMetricsGrowthTotalAlwaysZero(t *testing.T) {
	orders := []model.Order{
		order(100, "a", testNow.AddDate(0, 0, -400)),
		order(900, "b", testNow),
	}

	m := ComputeMetrics(orders, TimeframeTotal, testNow)
	assert.Equal(t, 1000.0, m.TotalRevenue)
	assert.Zero(t, m.Growth)
}

func TestComputeChartDataMergesDates(t *testing.T) {
	day := time.Date(2025, time.June, 14, 9, 0, 0, 0, time.UTC)
	orders := []model.Order{
		order(30, "a", day),
		order(70, "b", day.Add(5*time.Hour)),
		order(10, "c", day.AddDate(0, 0, -1)),
	}

	data := ComputeChartData(orders)

	require.Len(t, data.RevenueData, 2)
	assert.Equal(t, "2025-06-13", data.RevenueData[0].Date)
	assert.Equal(t, RevenuePoint{Date: "2025-06-14", Amount: 100}, data.RevenueData[1])
}

func TestComputeChartDataPaymentStatusCounts(t *testing.T) {
	orders := []model.Order{
		order(1, "a", testNow),
		order(1, "b", testNow),
		order(1, "c", testNow),
	}
	orders[2].PaymentStatus = model.PaymentPending

	data := ComputeChartData(orders)

	require.Len(t, data.PaymentMethods, 2)
	assert.Contains(t, data.PaymentMethods, StatusCount{Name: "paid", Value: 2})
	assert.Contains(t, data.PaymentMethods, StatusCount{Name: "pending", Value: 1})
}
