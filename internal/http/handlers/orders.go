package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"suq-dashboard-service/internal/middleware"
	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/queue"
	"suq-dashboard-service/internal/services"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

type orderLinePayload struct {
	ItemID      *int64 `json:"itemId"`
	ItemIDSnake *int64 `json:"item_id"`
	Quantity    int32  `json:"quantity"`
}

func (p orderLinePayload) itemID() *int64 { return pickInt64(p.ItemID, p.ItemIDSnake) }

type orderPayload struct {
	CustomerName       *string            `json:"customerName"`
	CustomerNameSnake  *string            `json:"customer_name"`
	CustomerPhone      *string            `json:"customerPhone"`
	CustomerPhoneSnake *string            `json:"customer_phone"`
	CustomerEmail      *string            `json:"customerEmail"`
	CustomerEmailSnake *string            `json:"customer_email"`
	PaymentMethod      *string            `json:"paymentMethod"`
	PaymentMethodSnake *string            `json:"payment_method"`
	PaidAmount         *float64           `json:"paidAmount"`
	PaidAmountSnake    *float64           `json:"paid_amount"`
	BranchID           *int64             `json:"branchId"`
	BranchIDSnake      *int64             `json:"branch_id"`
	Items              []orderLinePayload `json:"items"`
}

func (p orderPayload) customerName() *string  { return pickString(p.CustomerName, p.CustomerNameSnake) }
func (p orderPayload) customerPhone() *string { return pickString(p.CustomerPhone, p.CustomerPhoneSnake) }
func (p orderPayload) customerEmail() *string { return pickString(p.CustomerEmail, p.CustomerEmailSnake) }
func (p orderPayload) paymentMethod() *string { return pickString(p.PaymentMethod, p.PaymentMethodSnake) }
func (p orderPayload) paidAmount() *float64   { return pickFloat64(p.PaidAmount, p.PaidAmountSnake) }
func (p orderPayload) branchID() *int64       { return pickInt64(p.BranchID, p.BranchIDSnake) }

// afterOrderMutation drops stale aggregates and fans the event out. Both are
// best effort; the write already committed.
func (h *Handler) afterOrderMutation(ctx context.Context, ev queue.OrderEvent) {
	if err := h.Cache.InvalidateAll(ctx); err != nil {
		h.Logger.Warn("dashboard cache invalidate failed", zapError(err))
	}
	if h.Queue != nil {
		if err := h.Queue.PublishOrderEvent(ctx, ev); err != nil {
			h.Logger.Warn("order event publish failed", zapError(err))
		}
	}
}

func (h *Handler) OrdersList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.loadOrders(ctx)
	if err != nil {
		h.Logger.Error("orders list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch orders")
		return
	}

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		if !model.ValidOrderStatus(status) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown order status")
			return
		}
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == model.OrderStatus(status) {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	response.Success(w, orders)
}

func (h *Handler) OrdersGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	order, err := h.loadOrder(ctx, id)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	response.Success(w, order)
}

func (h *Handler) loadOrder(ctx context.Context, id int64) (*model.Order, error) {
	orders, err := h.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			if err := h.loadOrderActions(ctx, &orders[i]); err != nil {
				return nil, err
			}
			return &orders[i], nil
		}
	}
	return nil, services.ErrOrderNotFound
}

func (h *Handler) loadOrderActions(ctx context.Context, order *model.Order) error {
	rows, err := h.DB.Query(ctx, `
		select oa.action, u.username, oa.created_at
		from order_actions oa
		join users u on u.id = oa.performed_by
		where oa.order_id = $1
		order by oa.created_at
	`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a model.OrderAction
		if err := rows.Scan(&a.Action, &a.PerformedBy, &a.Timestamp); err != nil {
			return err
		}
		order.Actions = append(order.Actions, a)
	}
	return rows.Err()
}

func (h *Handler) OrdersCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var body orderPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	name := strings.TrimSpace(stringOrEmpty(body.customerName()))
	phone := strings.TrimSpace(stringOrEmpty(body.customerPhone()))
	if name == "" || phone == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Customer name and phone are required")
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
	if len(body.Items) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order must contain at least one item")
		return
	}

	in := services.PlaceOrderInput{
		CustomerName:  name,
		CustomerPhone: utils.NormalizePhone(phone, h.Config.DefaultCountryCode),
		CustomerEmail: nilIfBlank(body.customerEmail()),
		PaymentMethod: model.PaymentMethod(method),
		BranchID:      body.branchID(),
		CreatedBy:     authCtx.UserID,
	}
	if paid := body.paidAmount(); paid != nil && *paid > 0 {
		in.PaidAmount = *paid
	}
	for _, line := range body.Items {
		itemID := line.itemID()
		if itemID == nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Every line needs an item id")
			return
		}
		in.Lines = append(in.Lines, services.OrderLineInput{ItemID: *itemID, Quantity: line.Quantity})
	}

	order, err := services.PlaceOrder(ctx, h.DB, in)
	if err != nil {
		var stockErr *services.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			response.Error(w, http.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error())
		case errors.Is(err, services.ErrEmptyOrder):
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			h.Logger.Error("order create failed", zapError(err))
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to create order")
		}
		return
	}

	h.afterOrderMutation(ctx, queue.OrderEvent{
		Type:        queue.EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Total:       order.Total,
		ActorID:     authCtx.UserID,
	})
	response.Created(w, order)
}

func (h *Handler) OrdersUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	var body orderPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	lines := make([]services.OrderLineInput, 0, len(body.Items))
	for _, line := range body.Items {
		itemID := line.itemID()
		if itemID == nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Every line needs an item id")
			return
		}
		lines = append(lines, services.OrderLineInput{ItemID: *itemID, Quantity: line.Quantity})
	}

	if err := services.UpdateOrderLines(ctx, h.DB, id, lines, authCtx.UserID); err != nil {
		var stockErr *services.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			response.Error(w, http.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error())
		case errors.Is(err, services.ErrOrderNotFound):
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		case errors.Is(err, services.ErrInvalidTransition):
			response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		case errors.Is(err, services.ErrEmptyOrder):
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			h.Logger.Error("order update failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
		}
		return
	}

	order, err := h.loadOrder(ctx, id)
	if err != nil {
		h.Logger.Error("order reload failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
		return
	}
	h.afterOrderMutation(ctx, queue.OrderEvent{
		Type:        queue.EventOrderUpdated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Total:       order.Total,
		ActorID:     authCtx.UserID,
	})
	response.Success(w, order)
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) OrdersUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	var body statusPayload
	if err := decodeJSON(w, r, &body); err != nil || !model.ValidOrderStatus(body.Status) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown order status")
		return
	}

	if err := services.TransitionOrderStatus(ctx, h.DB, id, model.OrderStatus(body.Status), authCtx.UserID); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		case errors.Is(err, services.ErrInvalidTransition):
			response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		default:
			h.Logger.Error("order status update failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order status")
		}
		return
	}

	order, err := h.loadOrder(ctx, id)
	if err != nil {
		h.Logger.Error("order reload failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order status")
		return
	}
	h.afterOrderMutation(ctx, queue.OrderEvent{
		Type:        queue.EventOrderStatusUpdated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		ActorID:     authCtx.UserID,
	})
	response.Success(w, order)
}

type paymentStatusPayload struct {
	PaymentStatus      string `json:"paymentStatus"`
	PaymentStatusSnake string `json:"payment_status"`
}

func (h *Handler) OrdersUpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	var body paymentStatusPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	status := body.PaymentStatus
	if status == "" {
		status = body.PaymentStatusSnake
	}
	if !model.ValidPaymentStatus(status) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown payment status")
		return
	}

	if err := services.TransitionPaymentStatus(ctx, h.DB, id, model.PaymentStatus(status), authCtx.UserID); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		case errors.Is(err, services.ErrInvalidTransition):
			response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		default:
			h.Logger.Error("payment status update failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment status")
		}
		return
	}

	order, err := h.loadOrder(ctx, id)
	if err != nil {
		h.Logger.Error("order reload failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update payment status")
		return
	}
	h.afterOrderMutation(ctx, queue.OrderEvent{
		Type:          queue.EventOrderPaymentUpdated,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentStatus: string(order.PaymentStatus),
		ActorID:       authCtx.UserID,
	})
	response.Success(w, order)
}

func (h *Handler) OrdersDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	if err := services.DeleteOrder(ctx, h.DB, id, authCtx.UserID); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
			return
		}
		h.Logger.Error("order delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete order")
		return
	}

	h.afterOrderMutation(ctx, queue.OrderEvent{
		Type:    queue.EventOrderDeleted,
		OrderID: id,
		ActorID: authCtx.UserID,
	})
	response.NoContent(w)
}
