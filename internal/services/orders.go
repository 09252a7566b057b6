package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/utils"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InsufficientStockError reports the first line whose requested quantity
// exceeds the on-hand quantity. Nothing is mutated when it is returned.
type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ItemName, e.Requested, e.Available)
}

type OrderLineInput struct {
	ItemID   int64
	Quantity int32
}

type PlaceOrderInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail *string
	PaymentMethod model.PaymentMethod
	PaidAmount    float64
	BranchID      *int64
	CreatedBy     int64
	Lines         []OrderLineInput
}

type lockedItem struct {
	id         int64
	name       string
	price      float64
	quantity   int32
	categoryID pgtype.Int8
}

// lockItems locks the given item rows FOR UPDATE and returns them keyed by id.
// IDs are locked in ascending order so two concurrent orders over the same
// items cannot deadlock.
func lockItems(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]*lockedItem, error) {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	items := make(map[int64]*lockedItem, len(sorted))
	for _, id := range sorted {
		if _, ok := items[id]; ok {
			continue
		}
		it := &lockedItem{id: id}
		var price pgtype.Numeric
		err := tx.QueryRow(ctx, `
			select name, price, quantity, category_id
			from items
			where id = $1 and is_active = true
			for update
		`, id).Scan(&it.name, &price, &it.quantity, &it.categoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item %d not found: %w", id, pgx.ErrNoRows)
			}
			return nil, err
		}
		it.price = utils.NumericToFloat64(price)
		items[id] = it
	}
	return items, nil
}

// GenerateOrderNumber builds a short human-readable order number from the
// current unix time plus a random suffix.
func GenerateOrderNumber() string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	return fmt.Sprintf("ORD-%s-%03d", ts, rand.Intn(1000))
}

// PlaceOrder creates an order and decrements stock in one transaction. Every
// line is checked against the locked on-hand quantity first; an
// InsufficientStockError leaves the database untouched.
func PlaceOrder(ctx context.Context, db *pgxpool.Pool, in PlaceOrderInput) (*model.Order, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: quantity must be positive", l.ItemID)
		}
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.ItemID)
	}
	items, err := lockItems(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	// Verify availability for every line before mutating anything.
	requested := make(map[int64]int32, len(in.Lines))
	for _, l := range in.Lines {
		requested[l.ItemID] += l.Quantity
	}
	for id, qty := range requested {
		it := items[id]
		if qty > it.quantity {
			return nil, &InsufficientStockError{ItemID: id, ItemName: it.name, Requested: qty, Available: it.quantity}
		}
	}

	order := &model.Order{
		OrderNumber:   GenerateOrderNumber(),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentPending,
		PaymentMethod: in.PaymentMethod,
		BranchID:      in.BranchID,
		UserID:        in.CreatedBy,
		PaidAmount:    in.PaidAmount,
	}
	for _, l := range in.Lines {
		it := items[l.ItemID]
		line := model.OrderLine{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: it.price,
			Subtotal:  it.price * float64(l.Quantity),
		}
		if it.categoryID.Valid {
			line.CategoryID = it.categoryID.Int64
		}
		order.Total += line.Subtotal
		order.Lines = append(order.Lines, line)
	}
	order.RemainingAmount = order.Total - order.PaidAmount

	if err := tx.QueryRow(ctx, `
		insert into orders (
			order_number, customer_name, customer_phone, customer_email,
			status, payment_status, payment_method,
			total_amount, paid_amount, remaining_amount,
			branch_id, created_by, order_date, updated_at
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, now(), now())
		returning id, order_date, created_at, updated_at
	`,
		order.OrderNumber,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		string(order.Status),
		string(order.PaymentStatus),
		string(order.PaymentMethod),
		order.Total,
		order.PaidAmount,
		order.RemainingAmount,
		order.BranchID,
		order.UserID,
	).Scan(&order.ID, &order.OrderDate, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		var categoryID *int64
		if line.CategoryID != 0 {
			categoryID = &line.CategoryID
		}
		if _, err := tx.Exec(ctx, `
			insert into order_items (order_id, item_id, category_id, quantity, unit_price, subtotal)
			values ($1,$2,$3,$4,$5,$6)
		`, order.ID, line.ItemID, categoryID, line.Quantity, line.UnitPrice, line.Subtotal); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			update items set quantity = quantity - $1, updated_at = now() where id = $2
		`, line.Quantity, line.ItemID); err != nil {
			return nil, err
		}
	}

	if err := appendOrderAction(ctx, tx, order.ID, "create", in.CreatedBy); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderLines replaces an order's line items, applying only the stock
// delta per item. Lines dropped from the order are restocked, grown lines are
// re-checked against the locked on-hand quantity.
func UpdateOrderLines(ctx context.Context, db *pgxpool.Pool, orderID int64, lines []OrderLineInput, updatedBy int64) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", l.ItemID)
		}
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	var paid pgtype.Numeric
	if err := tx.QueryRow(ctx, `
		select status, paid_amount from orders where id = $1 for update
	`, orderID).Scan(&status, &paid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if model.OrderStatus(status) != model.OrderPending {
		return fmt.Errorf("%w: only pending orders can be edited", ErrInvalidTransition)
	}

	existing := make(map[int64]int32)
	rows, err := tx.Query(ctx, `select item_id, quantity from order_items where order_id = $1`, orderID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var itemID int64
		var qty int32
		if err := rows.Scan(&itemID, &qty); err != nil {
			rows.Close()
			return err
		}
		existing[itemID] += qty
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	requested := make(map[int64]int32, len(lines))
	for _, l := range lines {
		requested[l.ItemID] += l.Quantity
	}

	ids := make([]int64, 0, len(requested)+len(existing))
	for id := range requested {
		ids = append(ids, id)
	}
	for id := range existing {
		if _, ok := requested[id]; !ok {
			ids = append(ids, id)
		}
	}
	items, err := lockItems(ctx, tx, ids)
	if err != nil {
		return err
	}

	// Growth beyond the previously reserved quantity is what must fit.
	for id, qty := range requested {
		delta := qty - existing[id]
		if delta > items[id].quantity {
			return &InsufficientStockError{ItemID: id, ItemName: items[id].name, Requested: qty, Available: items[id].quantity + existing[id]}
		}
	}

	for id := range items {
		delta := requested[id] - existing[id]
		if delta == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `
			update items set quantity = quantity - $1, updated_at = now() where id = $2
		`, delta, id); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `delete from order_items where order_id = $1`, orderID); err != nil {
		return err
	}

	var total float64
	for _, l := range lines {
		it := items[l.ItemID]
		subtotal := it.price * float64(l.Quantity)
		total += subtotal
		var categoryID *int64
		if it.categoryID.Valid {
			categoryID = &it.categoryID.Int64
		}
		if _, err := tx.Exec(ctx, `
			insert into order_items (order_id, item_id, category_id, quantity, unit_price, subtotal)
			values ($1,$2,$3,$4,$5,$6)
		`, orderID, l.ItemID, categoryID, l.Quantity, it.price, subtotal); err != nil {
			return err
		}
	}

	paidAmount := utils.NumericToFloat64(paid)
	if _, err := tx.Exec(ctx, `
		update orders set total_amount = $1, remaining_amount = $1 - $2, updated_at = now() where id = $3
	`, total, paidAmount, orderID); err != nil {
		return err
	}

	if err := appendOrderAction(ctx, tx, orderID, "edit", updatedBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TransitionOrderStatus moves an order along the lifecycle state machine.
// Cancelling a pending order restores the stock it reserved.
func TransitionOrderStatus(ctx context.Context, db *pgxpool.Pool, orderID int64, next model.OrderStatus, actorID int64) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	if err := tx.QueryRow(ctx, `select status from orders where id = $1 for update`, orderID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if !model.OrderStatus(current).CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	if next == model.OrderCancelled {
		if err := restockOrderItems(ctx, tx, orderID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		update orders set status = $1, updated_at = now() where id = $2
	`, string(next), orderID); err != nil {
		return err
	}

	action := "complete"
	if next == model.OrderCancelled {
		action = "cancel"
	}
	if err := appendOrderAction(ctx, tx, orderID, action, actorID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TransitionPaymentStatus moves an order's payment status and keeps the paid
// and remaining amounts consistent when the order is marked paid.
func TransitionPaymentStatus(ctx context.Context, db *pgxpool.Pool, orderID int64, next model.PaymentStatus, actorID int64) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	if err := tx.QueryRow(ctx, `
		select payment_status from orders where id = $1 for update
	`, orderID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if !model.PaymentStatus(current).CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	if next == model.PaymentPaid {
		if _, err := tx.Exec(ctx, `
			update orders set payment_status = $1, paid_amount = total_amount, remaining_amount = 0, updated_at = now()
			where id = $2
		`, string(next), orderID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `
			update orders set payment_status = $1, updated_at = now() where id = $2
		`, string(next), orderID); err != nil {
			return err
		}
	}

	if err := appendOrderAction(ctx, tx, orderID, "mark_"+string(next), actorID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteOrder removes an order and restores the stock it consumed in the same
// transaction. Cancelled orders were already restocked and are removed as-is.
func DeleteOrder(ctx context.Context, db *pgxpool.Pool, orderID int64, actorID int64) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	if err := tx.QueryRow(ctx, `select status from orders where id = $1 for update`, orderID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}

	if model.OrderStatus(status) != model.OrderCancelled {
		if err := restockOrderItems(ctx, tx, orderID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `delete from order_actions where order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `delete from order_items where order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `delete from orders where id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func restockOrderItems(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `
		update items i
		set quantity = i.quantity + oi.quantity, updated_at = now()
		from order_items oi
		where oi.order_id = $1 and oi.item_id = i.id
	`, orderID)
	return err
}

func appendOrderAction(ctx context.Context, tx pgx.Tx, orderID int64, action string, actorID int64) error {
	_, err := tx.Exec(ctx, `
		insert into order_actions (order_id, action, performed_by)
		values ($1,$2,$3)
	`, orderID, action, actorID)
	return err
}
