package handlers

import (
	"fmt"
	"net/http"
	"time"

	"suq-dashboard-service/internal/analytics"
	"suq-dashboard-service/internal/report"
	"suq-dashboard-service/pkg/response"
)

// DashboardReport renders the timeframe's aggregates into a downloadable PDF.
func (h *Handler) DashboardReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tf, ok := h.parseTimeframe(w, r)
	if !ok {
		return
	}

	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("report orders load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}
	items, err := h.loadItems(ctx)
	if err != nil {
		h.Logger.Error("report items load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}
	categories, err := h.loadCategories(ctx)
	if err != nil {
		h.Logger.Error("report categories load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}

	now := time.Now()
	filtered := analytics.FilterOrders(orders, tf, now)
	buffer, err := report.RenderSalesReport(report.SalesReportData{
		BusinessName: "Suq Dashboard",
		Timeframe:    string(tf),
		GeneratedAt:  now,
		Metrics:      analytics.ComputeMetrics(orders, tf, now),
		Charts:       analytics.ComputeChartData(filtered),
		Rollups:      analytics.ComputeAnalytics(filtered, items, categories),
	})
	if err != nil {
		h.Logger.Error("report render failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}

	filename := fmt.Sprintf("sales-report-%s-%s.pdf", tf, now.Format("01-02-2006"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buffer.Bytes())
}
