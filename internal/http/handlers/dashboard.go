package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"suq-dashboard-service/internal/analytics"
	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

func (h *Handler) parseTimeframe(w http.ResponseWriter, r *http.Request) (analytics.Timeframe, bool) {
	tf, err := analytics.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown timeframe")
		return "", false
	}
	return tf, true
}

// loadOrders reads every order with its line items. The analytics layer works
// on full in-memory snapshots, mirroring how the dashboard consumes them.
func (h *Handler) loadOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := h.DB.Query(ctx, `
		select id, order_number, customer_name, customer_phone, customer_email,
			status, payment_status, payment_method,
			total_amount, paid_amount, remaining_amount,
			branch_id, created_by, order_date, created_at, updated_at
		from orders
		order by order_date desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0, 64)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			o        model.Order
			email    pgtype.Text
			status   string
			payment  string
			method   string
			total    pgtype.Numeric
			paid     pgtype.Numeric
			remains  pgtype.Numeric
			branchID pgtype.Int8
		)
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &email,
			&status, &payment, &method,
			&total, &paid, &remains,
			&branchID, &o.UserID, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		o.CustomerEmail = textPtr(email)
		o.Status = model.OrderStatus(status)
		o.PaymentStatus = model.PaymentStatus(payment)
		o.PaymentMethod = model.PaymentMethod(method)
		o.Total = utils.NumericToFloat64(total)
		o.PaidAmount = utils.NumericToFloat64(paid)
		o.RemainingAmount = utils.NumericToFloat64(remains)
		o.BranchID = int8Ptr(branchID)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := h.DB.Query(ctx, `
		select order_id, item_id, category_id, quantity, unit_price, subtotal
		from order_items
	`)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var (
			orderID    int64
			line       model.OrderLine
			categoryID pgtype.Int8
			unitPrice  pgtype.Numeric
			subtotal   pgtype.Numeric
		)
		if err := lineRows.Scan(&orderID, &line.ItemID, &categoryID, &line.Quantity, &unitPrice, &subtotal); err != nil {
			return nil, err
		}
		if categoryID.Valid {
			line.CategoryID = categoryID.Int64
		}
		line.UnitPrice = utils.NumericToFloat64(unitPrice)
		line.Subtotal = utils.NumericToFloat64(subtotal)
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, line)
		}
	}
	return orders, lineRows.Err()
}

func (h *Handler) loadItems(ctx context.Context) ([]model.Item, error) {
	rows, err := h.DB.Query(ctx, `
		select id, name, price, quantity, category_id
		from items
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Item, 0, 64)
	for rows.Next() {
		var (
			it         model.Item
			price      pgtype.Numeric
			categoryID pgtype.Int8
		)
		if err := rows.Scan(&it.ID, &it.Name, &price, &it.Quantity, &categoryID); err != nil {
			return nil, err
		}
		it.Price = utils.NumericToFloat64(price)
		it.CategoryID = int8Ptr(categoryID)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (h *Handler) loadCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := h.DB.Query(ctx, `select id, name from categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0, 16)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (h *Handler) DashboardMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tf, ok := h.parseTimeframe(w, r)
	if !ok {
		return
	}

	var cached analytics.Metrics
	if hit, err := h.Cache.Get(ctx, "metrics", string(tf), &cached); err == nil && hit {
		response.Success(w, cached)
		return
	}

	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("metrics orders load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute metrics")
		return
	}

	metrics := analytics.ComputeMetrics(orders, tf, time.Now())
	if err := h.Cache.Set(ctx, "metrics", string(tf), metrics); err != nil {
		h.Logger.Warn("metrics cache set failed", zapError(err))
	}
	response.Success(w, metrics)
}

func (h *Handler) DashboardCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tf, ok := h.parseTimeframe(w, r)
	if !ok {
		return
	}

	var cached analytics.ChartData
	if hit, err := h.Cache.Get(ctx, "charts", string(tf), &cached); err == nil && hit {
		response.Success(w, cached)
		return
	}

	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("charts orders load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute charts")
		return
	}

	charts := analytics.ComputeChartData(analytics.FilterOrders(orders, tf, time.Now()))
	if err := h.Cache.Set(ctx, "charts", string(tf), charts); err != nil {
		h.Logger.Warn("charts cache set failed", zapError(err))
	}
	response.Success(w, charts)
}

func (h *Handler) DashboardAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tf, ok := h.parseTimeframe(w, r)
	if !ok {
		return
	}

	var cached analytics.Analytics
	if hit, err := h.Cache.Get(ctx, "analytics", string(tf), &cached); err == nil && hit {
		response.Success(w, cached)
		return
	}

	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("analytics orders load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute analytics")
		return
	}
	items, err := h.loadItems(ctx)
	if err != nil {
		h.Logger.Error("analytics items load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute analytics")
		return
	}
	categories, err := h.loadCategories(ctx)
	if err != nil {
		h.Logger.Error("analytics categories load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute analytics")
		return
	}

	result := analytics.ComputeAnalytics(analytics.FilterOrders(orders, tf, time.Now()), items, categories)
	if err := h.Cache.Set(ctx, "analytics", string(tf), result); err != nil {
		h.Logger.Warn("analytics cache set failed", zapError(err))
	}
	response.Success(w, result)
}
