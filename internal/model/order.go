package model

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "Cash"
	PayTelebirr     PaymentMethod = "Telebirr"
	PayBankTransfer PaymentMethod = "Bank Transfer"
	PayCredit       PaymentMethod = "Credit"
)

// OrderLine is one ordered (item, quantity, price) triple within an order.
type OrderLine struct {
	ItemID     int64   `json:"itemId"`
	CategoryID int64   `json:"categoryId"`
	Quantity   int32   `json:"quantity"`
	UnitPrice  float64 `json:"price"`
	Subtotal   float64 `json:"subtotal"`
}

type OrderAction struct {
	Action      string    `json:"type"`
	PerformedBy string    `json:"performedBy"`
	Timestamp   time.Time `json:"timestamp"`
}

type Order struct {
	ID              int64         `json:"id"`
	OrderNumber     string        `json:"orderNumber"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerEmail   *string       `json:"customerEmail,omitempty"`
	Lines           []OrderLine   `json:"items"`
	Total           float64       `json:"total"`
	PaidAmount      float64       `json:"paidAmount"`
	RemainingAmount float64       `json:"remainingAmount"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	BranchID        *int64        `json:"branchId,omitempty"`
	UserID          int64         `json:"userId"`
	OrderDate       time.Time     `json:"orderDate"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Actions         []OrderAction `json:"actions"`
}

// CanTransition reports whether an order may move from one lifecycle status
// to another. Completed and cancelled are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case OrderPending:
		return next == OrderCompleted || next == OrderCancelled
	default:
		return false
	}
}

// CanTransition for payment: pending may become paid or cancelled.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case PaymentPending:
		return next == PaymentPaid || next == PaymentCancelled
	default:
		return false
	}
}

func ValidOrderStatus(v string) bool {
	switch OrderStatus(v) {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(v string) bool {
	switch PaymentStatus(v) {
	case PaymentPending, PaymentPaid, PaymentCancelled:
		return true
	}
	return false
}
