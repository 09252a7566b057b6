package analytics

import (
	"sort"

	"suq-dashboard-service/internal/model"
)

const topSellingLimit = 5

const uncategorized = "Uncategorized"

type ItemSales struct {
	ItemID        int64   `json:"item_id"`
	ItemName      string  `json:"item_name"`
	CategoryName  string  `json:"category_name"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity int64   `json:"total_quantity"`
}

type CategoryRollup struct {
	CategoryName      string  `json:"category_name"`
	TotalItems        int64   `json:"total_items"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type CustomerRollup struct {
	CustomerID        string  `json:"customer_id"`
	CustomerName      string  `json:"customer_name"`
	TotalOrders       int64   `json:"total_orders"`
	TotalAmount       float64 `json:"total_amount"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type Analytics struct {
	TopSellingItems   []ItemSales      `json:"topSellingItems"`
	CategoryAnalytics []CategoryRollup `json:"categoryAnalytics"`
	CustomerAnalytics []CustomerRollup `json:"customerAnalytics"`
}

// ComputeAnalytics joins filtered orders against the inventory and category
// snapshots to produce the per-item, per-category and per-customer rollups.
// Line items referencing unknown inventory ids are skipped; items whose
// category cannot be resolved fall back to "Uncategorized".
func ComputeAnalytics(filtered []model.Order, items []model.Item, categories []model.Category) Analytics {
	categoryNames := make(map[int64]string, len(categories))
	for _, category := range categories {
		categoryNames[category.ID] = category.Name
	}

	type itemDetails struct {
		name     string
		category string
	}
	details := make(map[int64]itemDetails, len(items))
	for _, item := range items {
		category := uncategorized
		if item.CategoryID != nil {
			if name, ok := categoryNames[*item.CategoryID]; ok {
				category = name
			}
		}
		details[item.ID] = itemDetails{name: item.Name, category: category}
	}

	itemSales := make(map[int64]*ItemSales)
	categoryRollups := make(map[string]*CategoryRollup)
	for _, order := range filtered {
		for _, line := range order.Lines {
			info, ok := details[line.ItemID]
			if !ok {
				continue
			}

			sale := itemSales[line.ItemID]
			if sale == nil {
				sale = &ItemSales{ItemID: line.ItemID, ItemName: info.name, CategoryName: info.category}
				itemSales[line.ItemID] = sale
			}
			sale.TotalRevenue += line.UnitPrice * float64(line.Quantity)
			sale.TotalQuantity += int64(line.Quantity)

			rollup := categoryRollups[info.category]
			if rollup == nil {
				rollup = &CategoryRollup{CategoryName: info.category}
				categoryRollups[info.category] = rollup
			}
			rollup.TotalItems += int64(line.Quantity)
			rollup.TotalRevenue += line.UnitPrice * float64(line.Quantity)
		}
	}

	topSelling := make([]ItemSales, 0, len(itemSales))
	for _, sale := range itemSales {
		topSelling = append(topSelling, *sale)
	}
	sort.Slice(topSelling, func(i, j int) bool {
		if topSelling[i].TotalRevenue != topSelling[j].TotalRevenue {
			return topSelling[i].TotalRevenue > topSelling[j].TotalRevenue
		}
		return topSelling[i].ItemID < topSelling[j].ItemID
	})
	if len(topSelling) > topSellingLimit {
		topSelling = topSelling[:topSellingLimit]
	}

	byCategory := make([]CategoryRollup, 0, len(categoryRollups))
	for _, rollup := range categoryRollups {
		if rollup.TotalItems > 0 {
			rollup.AverageOrderValue = rollup.TotalRevenue / float64(rollup.TotalItems)
		}
		byCategory = append(byCategory, *rollup)
	}
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].TotalRevenue != byCategory[j].TotalRevenue {
			return byCategory[i].TotalRevenue > byCategory[j].TotalRevenue
		}
		return byCategory[i].CategoryName < byCategory[j].CategoryName
	})

	return Analytics{
		TopSellingItems:   topSelling,
		CategoryAnalytics: byCategory,
		CustomerAnalytics: computeCustomerRollups(filtered),
	}
}

func computeCustomerRollups(filtered []model.Order) []CustomerRollup {
	byPhone := make(map[string]*CustomerRollup)
	for _, order := range filtered {
		rollup := byPhone[order.CustomerPhone]
		if rollup == nil {
			rollup = &CustomerRollup{CustomerID: order.CustomerPhone, CustomerName: order.CustomerName}
			byPhone[order.CustomerPhone] = rollup
		}
		rollup.TotalOrders++
		rollup.TotalAmount += order.Total
	}

	out := make([]CustomerRollup, 0, len(byPhone))
	for _, rollup := range byPhone {
		rollup.AverageOrderValue = rollup.TotalAmount / float64(rollup.TotalOrders)
		out = append(out, *rollup)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
