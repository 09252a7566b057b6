package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"suq-dashboard-service/internal/analytics"
	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/pkg/response"
)

func exportFilename(entity string, now time.Time) string {
	return fmt.Sprintf("%s-export-%s.csv", entity, now.Format("01-02-2006"))
}

func writeCSV(w http.ResponseWriter, entity string, records [][]string) {
	buffer := &bytes.Buffer{}
	cw := csv.NewWriter(buffer)
	_ = cw.WriteAll(records)
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(entity, time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buffer.Bytes())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatOptInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func branchRecords(branches []model.Branch) [][]string {
	records := [][]string{{"id", "name", "address", "contactNumber", "active", "createdAt"}}
	for _, b := range branches {
		records = append(records, []string{
			strconv.FormatInt(b.ID, 10), b.Name, b.Address, b.ContactNumber,
			strconv.FormatBool(b.Active), b.CreatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func categoryRecords(categories []model.Category) [][]string {
	records := [][]string{{"id", "name", "description", "branchId", "active", "createdAt"}}
	for _, c := range categories {
		records = append(records, []string{
			strconv.FormatInt(c.ID, 10), c.Name, formatOptString(c.Description),
			formatOptInt64(c.BranchID), strconv.FormatBool(c.Active), c.CreatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func itemRecords(items []model.Item) [][]string {
	records := [][]string{{
		"id", "name", "description", "price", "quantity", "minQuantity", "maxQuantity",
		"unitOfMeasure", "categoryId", "branchId", "active", "createdAt",
	}}
	for _, it := range items {
		unit := ""
		if it.UnitOfMeasure != nil {
			unit = string(*it.UnitOfMeasure)
		}
		records = append(records, []string{
			strconv.FormatInt(it.ID, 10), it.Name, formatOptString(it.Description),
			formatFloat(it.Price), strconv.FormatInt(int64(it.Quantity), 10),
			strconv.FormatInt(int64(it.MinQuantity), 10), strconv.FormatInt(int64(it.MaxQuantity), 10),
			unit, formatOptInt64(it.CategoryID), formatOptInt64(it.BranchID),
			strconv.FormatBool(it.Active), it.CreatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func userRecords(users []model.User) [][]string {
	records := [][]string{{"id", "username", "name", "email", "phone", "role", "branchId", "active", "lastLogin", "createdAt"}}
	for _, u := range users {
		lastLogin := ""
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format(time.RFC3339)
		}
		records = append(records, []string{
			strconv.FormatInt(u.ID, 10), u.Username, u.Name, formatOptString(u.Email), u.Phone,
			u.Role, formatOptInt64(u.BranchID), strconv.FormatBool(u.Active),
			lastLogin, u.CreatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func expenseRecords(expenses []model.Expense) [][]string {
	records := [][]string{{
		"id", "name", "amount", "description", "expenseDate", "paymentMethod",
		"receiptNumber", "frequency", "branchId", "active", "createdAt",
	}}
	for _, e := range expenses {
		frequency := ""
		if e.Frequency != nil {
			frequency = string(*e.Frequency)
		}
		records = append(records, []string{
			strconv.FormatInt(e.ID, 10), e.Name, formatFloat(e.Amount), formatOptString(e.Description),
			e.ExpenseDate.Format("2006-01-02"), string(e.PaymentMethod),
			formatOptString(e.ReceiptNumber), frequency, formatOptInt64(e.BranchID),
			strconv.FormatBool(e.Active), e.CreatedAt.Format(time.RFC3339),
		})
	}
	return records
}

// orderRecords flattens each order into one row per line item; an order with
// no surviving lines still exports as a single row with blank item columns.
func orderRecords(orders []model.Order) [][]string {
	records := [][]string{{
		"orderNumber", "customerName", "customerPhone", "customerEmail",
		"itemId", "quantity", "price", "status", "paymentStatus", "orderDate", "total", "userId",
	}}
	for _, o := range orders {
		base := func(itemID, quantity, price string) []string {
			return []string{
				o.OrderNumber, o.CustomerName, o.CustomerPhone, formatOptString(o.CustomerEmail),
				itemID, quantity, price, string(o.Status), string(o.PaymentStatus),
				o.OrderDate.Format(time.RFC3339), formatFloat(o.Total), strconv.FormatInt(o.UserID, 10),
			}
		}
		if len(o.Lines) == 0 {
			records = append(records, base("", "", ""))
			continue
		}
		for _, line := range o.Lines {
			records = append(records, base(
				strconv.FormatInt(line.ItemID, 10),
				strconv.FormatInt(int64(line.Quantity), 10),
				formatFloat(line.UnitPrice),
			))
		}
	}
	return records
}

func (h *Handler) BranchesExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `
		select id, name, address, contact_number, is_active, created_at, updated_at
		from branches order by id
	`)
	if err != nil {
		h.Logger.Error("branches export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export branches")
		return
	}
	defer rows.Close()

	branches := make([]model.Branch, 0, 8)
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.ContactNumber, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export branches")
			return
		}
		branches = append(branches, b)
	}
	writeCSV(w, "branches", branchRecords(branches))
}

func (h *Handler) CategoriesExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `
		select id, name, description, branch_id, is_active, created_at, updated_at
		from categories order by id
	`)
	if err != nil {
		h.Logger.Error("categories export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export categories")
		return
	}
	defer rows.Close()

	categories := make([]model.Category, 0, 16)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export categories")
			return
		}
		categories = append(categories, c)
	}
	writeCSV(w, "categories", categoryRecords(categories))
}

func (h *Handler) ItemsExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `select `+itemColumns+` from items order by id`)
	if err != nil {
		h.Logger.Error("items export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export items")
		return
	}
	defer rows.Close()

	items := make([]model.Item, 0, 32)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export items")
			return
		}
		items = append(items, it)
	}
	writeCSV(w, "items", itemRecords(items))
}

func (h *Handler) UsersExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `select `+userColumns+` from users order by id`)
	if err != nil {
		h.Logger.Error("users export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export users")
		return
	}
	defer rows.Close()

	users := make([]model.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export users")
			return
		}
		users = append(users, u)
	}
	writeCSV(w, "users", userRecords(users))
}

func (h *Handler) ExpensesExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `select `+expenseColumns+` from expenses order by id`)
	if err != nil {
		h.Logger.Error("expenses export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export expenses")
		return
	}
	defer rows.Close()

	expenses := make([]model.Expense, 0, 16)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export expenses")
			return
		}
		expenses = append(expenses, e)
	}
	writeCSV(w, "expenses", expenseRecords(expenses))
}

func (h *Handler) OrdersExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("orders export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export orders")
		return
	}
	writeCSV(w, "orders", orderRecords(orders))
}

// DashboardExport exports the orders belonging to the requested timeframe,
// same flattening as the orders export.
func (h *Handler) DashboardExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tf, ok := h.parseTimeframe(w, r)
	if !ok {
		return
	}

	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("dashboard export failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export orders")
		return
	}
	writeCSV(w, "orders", orderRecords(analytics.FilterOrders(orders, tf, time.Now())))
}
