package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

type expensePayload struct {
	Name                *string  `json:"name"`
	Amount              *float64 `json:"amount"`
	Description         *string  `json:"description"`
	ExpenseDate         *string  `json:"expenseDate"`
	ExpenseDateSnake    *string  `json:"expense_date"`
	PaymentMethod       *string  `json:"paymentMethod"`
	PaymentMethodSnake  *string  `json:"payment_method"`
	ReceiptNumber       *string  `json:"receiptNumber"`
	ReceiptNumberSnake  *string  `json:"receipt_number"`
	Frequency           *string  `json:"frequency"`
	RecurringFrequency  *string  `json:"recurring_frequency"`
	BranchID            *int64   `json:"branchId"`
	BranchIDSnake       *int64   `json:"branch_id"`
	Active              *bool    `json:"active"`
	IsActive            *bool    `json:"is_active"`
}

func (p expensePayload) expenseDate() *string   { return pickString(p.ExpenseDate, p.ExpenseDateSnake) }
func (p expensePayload) paymentMethod() *string { return pickString(p.PaymentMethod, p.PaymentMethodSnake) }
func (p expensePayload) receiptNumber() *string { return pickString(p.ReceiptNumber, p.ReceiptNumberSnake) }
func (p expensePayload) frequency() *string     { return pickString(p.Frequency, p.RecurringFrequency) }
func (p expensePayload) branchID() *int64       { return pickInt64(p.BranchID, p.BranchIDSnake) }
func (p expensePayload) active() *bool          { return pickBool(p.Active, p.IsActive) }

const expenseColumns = `id, name, amount, description, expense_date, payment_method,
	receipt_number, recurring_frequency, branch_id, is_active, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (model.Expense, error) {
	var (
		e           model.Expense
		amount      pgtype.Numeric
		description pgtype.Text
		method      string
		receipt     pgtype.Text
		frequency   pgtype.Text
		branchID    pgtype.Int8
	)
	err := row.Scan(&e.ID, &e.Name, &amount, &description, &e.ExpenseDate, &method,
		&receipt, &frequency, &branchID, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	e.Amount = utils.NumericToFloat64(amount)
	e.Description = textPtr(description)
	e.PaymentMethod = model.PaymentMethod(method)
	e.ReceiptNumber = textPtr(receipt)
	if frequency.Valid {
		f := model.ExpenseFrequency(frequency.String)
		e.Frequency = &f
	}
	e.BranchID = int8Ptr(branchID)
	return e, err
}

func parseExpenseDate(raw *string) (time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return time.Now(), true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(*raw)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func validPaymentMethod(v string) bool {
	switch model.PaymentMethod(v) {
	case model.PayCash, model.PayTelebirr, model.PayBankTransfer, model.PayCredit:
		return true
	}
	return false
}

func (h *Handler) ExpensesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `select `+expenseColumns+` from expenses order by expense_date desc`)
	if err != nil {
		h.Logger.Error("expenses list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch expenses")
		return
	}
	defer rows.Close()

	expenses := make([]model.Expense, 0, 16)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			h.Logger.Error("expenses scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch expenses")
			return
		}
		expenses = append(expenses, e)
	}
	response.Success(w, expenses)
}

func (h *Handler) ExpensesGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid expense id")
		return
	}

	e, err := scanExpense(h.DB.QueryRow(ctx, `select `+expenseColumns+` from expenses where id = $1`, id))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Expense not found")
		return
	}
	response.Success(w, e)
}

func (h *Handler) ExpensesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body expensePayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	name := strings.TrimSpace(stringOrEmpty(body.Name))
	if name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Expense name is required")
		return
	}
	if body.Amount == nil || *body.Amount <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A positive amount is required")
		return
	}
	method := stringOrEmpty(body.paymentMethod())
	if method == "" {
		method = string(model.PayCash)
	}
	if !validPaymentMethod(method) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown payment method")
		return
	}
	if f := body.frequency(); f != nil && *f != "" && !model.ValidExpenseFrequency(*f) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown expense frequency")
		return
	}
	expenseDate, ok := parseExpenseDate(body.expenseDate())
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid expense date")
		return
	}
	active := true
	if v := body.active(); v != nil {
		active = *v
	}

	e, err := scanExpense(h.DB.QueryRow(ctx, `
		insert into expenses (name, amount, description, expense_date, payment_method,
			receipt_number, recurring_frequency, branch_id, is_active, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
		returning `+expenseColumns+`
	`, name, *body.Amount, nilIfBlank(body.Description), expenseDate, method,
		nilIfBlank(body.receiptNumber()), nilIfBlank(body.frequency()), body.branchID(), active))
	if err != nil {
		h.Logger.Error("expense create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create expense")
		return
	}
	response.Created(w, e)
}

func (h *Handler) ExpensesUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid expense id")
		return
	}

	var body expensePayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.Amount != nil && *body.Amount <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Amount must be positive")
		return
	}
	if m := body.paymentMethod(); m != nil && *m != "" && !validPaymentMethod(*m) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown payment method")
		return
	}
	if f := body.frequency(); f != nil && *f != "" && !model.ValidExpenseFrequency(*f) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown expense frequency")
		return
	}

	var expenseDate *time.Time
	if raw := body.expenseDate(); raw != nil && strings.TrimSpace(*raw) != "" {
		parsed, ok := parseExpenseDate(raw)
		if !ok {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid expense date")
			return
		}
		expenseDate = &parsed
	}

	e, err := scanExpense(h.DB.QueryRow(ctx, `
		update expenses set
			name = coalesce($2, name),
			amount = coalesce($3, amount),
			description = coalesce($4, description),
			expense_date = coalesce($5, expense_date),
			payment_method = coalesce($6, payment_method),
			receipt_number = coalesce($7, receipt_number),
			recurring_frequency = coalesce($8, recurring_frequency),
			branch_id = coalesce($9, branch_id),
			is_active = coalesce($10, is_active),
			updated_at = now()
		where id = $1
		returning `+expenseColumns+`
	`, id, nilIfBlank(body.Name), body.Amount, body.Description, expenseDate,
		nilIfBlank(body.paymentMethod()), body.receiptNumber(), nilIfBlank(body.frequency()),
		body.branchID(), body.active()))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Expense not found")
		return
	}
	response.Success(w, e)
}

func (h *Handler) ExpensesDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid expense id")
		return
	}

	tag, err := h.DB.Exec(ctx, `delete from expenses where id = $1`, id)
	if err != nil {
		h.Logger.Error("expense delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete expense")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Expense not found")
		return
	}
	response.NoContent(w)
}
