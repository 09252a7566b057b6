package queue

import "time"

const (
	EventOrderCreated        = "order.created"
	EventOrderUpdated        = "order.updated"
	EventOrderStatusUpdated  = "order.status.updated"
	EventOrderPaymentUpdated = "order.payment.updated"
	EventOrderDeleted        = "order.deleted"
)

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       int64     `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	Status        string    `json:"status,omitempty"`
	PaymentStatus string    `json:"paymentStatus,omitempty"`
	Total         float64   `json:"total,omitempty"`
	ActorID       int64     `json:"actorId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}
