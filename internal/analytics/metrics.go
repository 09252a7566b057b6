package analytics

import (
	"time"

	"suq-dashboard-service/internal/model"
)

type Metrics struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	UniqueCustomers   int     `json:"uniqueCustomers"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	Growth            float64 `json:"growth"`
}

// ComputeMetrics derives the headline dashboard numbers for a timeframe.
// It takes the full order list so the previous-period window for growth can
// be re-filtered independently of the current one.
func ComputeMetrics(orders []model.Order, tf Timeframe, now time.Time) Metrics {
	filtered := FilterOrders(orders, tf, now)

	totalRevenue := sumTotals(filtered)

	phones := make(map[string]struct{}, len(filtered))
	for _, order := range filtered {
		phones[order.CustomerPhone] = struct{}{}
	}

	count := len(filtered)
	if count == 0 {
		count = 1
	}

	return Metrics{
		TotalRevenue:      totalRevenue,
		UniqueCustomers:   len(phones),
		AverageOrderValue: totalRevenue / float64(count),
		Growth:            growth(orders, totalRevenue, tf, now),
	}
}

// growth is the percentage change of revenue versus the immediately
// preceding window of equal length. Zero previous revenue yields 0, and
// total has no previous window, so it is always 0 there.
func growth(orders []model.Order, currentRevenue float64, tf Timeframe, now time.Time) float64 {
	previous := tf.PreviousRange(now)
	if previous == nil {
		return 0
	}

	previousRevenue := sumTotals(filterByRange(orders, *previous))
	if previousRevenue == 0 {
		return 0
	}
	return (currentRevenue - previousRevenue) / previousRevenue * 100
}

func sumTotals(orders []model.Order) float64 {
	var sum float64
	for _, order := range orders {
		sum += order.Total
	}
	return sum
}
