// Package report renders the downloadable PDF sales report from computed
// dashboard aggregates.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"suq-dashboard-service/internal/analytics"
)

type SalesReportData struct {
	BusinessName string
	Timeframe    string
	GeneratedAt  time.Time
	Metrics      analytics.Metrics
	Charts       analytics.ChartData
	Rollups      analytics.Analytics
}

func money(v float64) string {
	return fmt.Sprintf("ETB %.2f", v)
}

// RenderSalesReport produces an A4 portrait report: headline metrics, the
// daily revenue series, top selling items and category totals.
func RenderSalesReport(data SalesReportData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, data.BusinessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Sales report (%s)", data.Timeframe), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", data.GeneratedAt.Format("Jan 2, 2006 15:04")), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, "Overview", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total revenue: %s", money(data.Metrics.TotalRevenue)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Unique customers: %d", data.Metrics.UniqueCustomers), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Average order value: %s", money(data.Metrics.AverageOrderValue)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Growth vs previous period: %.1f%%", data.Metrics.Growth), "", 1, "L", false, 0, "")

	if len(data.Charts.RevenueData) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Daily revenue", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(50, 6, "Date", "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, "Revenue", "1", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, p := range data.Charts.RevenueData {
			pdf.CellFormat(50, 6, p.Date, "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, money(p.Amount), "1", 1, "R", false, 0, "")
		}
	}

	if len(data.Rollups.TopSellingItems) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Top selling items", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(65, 6, "Item", "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, "Category", "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, "Qty", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, "Revenue", "1", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, it := range data.Rollups.TopSellingItems {
			pdf.CellFormat(65, 6, it.ItemName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 6, it.CategoryName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%d", it.TotalQuantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, money(it.TotalRevenue), "1", 1, "R", false, 0, "")
		}
	}

	if len(data.Rollups.CategoryAnalytics) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Revenue by category", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(70, 6, "Category", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, "Items sold", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, "Revenue", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, "Avg value", "1", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, c := range data.Rollups.CategoryAnalytics {
			pdf.CellFormat(70, 6, c.CategoryName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", c.TotalItems), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, money(c.TotalRevenue), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, money(c.AverageOrderValue), "1", 1, "R", false, 0, "")
		}
	}

	if len(data.Charts.PaymentMethods) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Payment status breakdown", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, s := range data.Charts.PaymentMethods {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %d", s.Name, s.Value), "", 1, "L", false, 0, "")
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
