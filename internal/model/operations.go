package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	BranchID  *int64    `json:"branchId,omitempty"`
	Active    bool      `json:"active"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ExpenseFrequency string

const (
	ExpenseOnce       ExpenseFrequency = "once"
	ExpenseDaily      ExpenseFrequency = "daily"
	ExpenseWeekly     ExpenseFrequency = "weekly"
	ExpenseMonthly    ExpenseFrequency = "monthly"
	ExpenseQuarterly  ExpenseFrequency = "quarterly"
	ExpenseHalfYearly ExpenseFrequency = "halfYearly"
	ExpenseYearly     ExpenseFrequency = "yearly"
)

func ValidExpenseFrequency(v string) bool {
	switch ExpenseFrequency(v) {
	case ExpenseOnce, ExpenseDaily, ExpenseWeekly, ExpenseMonthly,
		ExpenseQuarterly, ExpenseHalfYearly, ExpenseYearly:
		return true
	}
	return false
}

type Expense struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Amount        float64           `json:"amount"`
	Description   *string           `json:"description,omitempty"`
	ExpenseDate   time.Time         `json:"expenseDate"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	ReceiptNumber *string           `json:"receiptNumber,omitempty"`
	Frequency     *ExpenseFrequency `json:"frequency,omitempty"`
	BranchID      *int64            `json:"branchId,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
