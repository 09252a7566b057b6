package analytics

import (
	"sort"

	"suq-dashboard-service/internal/model"
)

type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type StatusCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type ChartData struct {
	RevenueData    []RevenuePoint `json:"revenueData"`
	PaymentMethods []StatusCount  `json:"paymentMethods"`
}

// ComputeChartData shapes filtered orders for the dashboard charts: a daily
// revenue series sorted ascending by date, and a payment-status
// distribution. Orders sharing a calendar date merge into one point.
func ComputeChartData(filtered []model.Order) ChartData {
	byDate := make(map[string]float64)
	for _, order := range filtered {
		byDate[order.OrderDate.Format("2006-01-02")] += order.Total
	}

	revenue := make([]RevenuePoint, 0, len(byDate))
	for date, amount := range byDate {
		revenue = append(revenue, RevenuePoint{Date: date, Amount: amount})
	}
	sort.Slice(revenue, func(i, j int) bool { return revenue[i].Date < revenue[j].Date })

	byStatus := make(map[string]int64)
	for _, order := range filtered {
		byStatus[string(order.PaymentStatus)]++
	}

	statuses := make([]StatusCount, 0, len(byStatus))
	for name, value := range byStatus {
		statuses = append(statuses, StatusCount{Name: name, Value: value})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	return ChartData{RevenueData: revenue, PaymentMethods: statuses}
}
