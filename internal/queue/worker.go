package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	workerMaxRetries = 3
	workerRetryDelay = 2 * time.Second
)

type HandlerFunc func(ctx context.Context, body []byte) error

// Worker drains the order events queue: every event lands in the
// notifications table so the dashboard bell has something to show, and
// order.created additionally raises low stock alerts for items that the
// order pushed at or below their minimum quantity.
type Worker struct {
	Client *Client
	DB     *pgxpool.Pool
	Logger *zap.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if err := EnsureOrderEventsTopology(w.Client); err != nil {
		return err
	}
	return w.Client.consumeWithRetry(OrderEventsQueue, w.handleOrderEvent, workerMaxRetries, workerRetryDelay)
}

func (w *Worker) handleOrderEvent(ctx context.Context, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		w.Logger.Warn("discarding malformed order event", zap.Error(err))
		return nil
	}

	w.Logger.Info("order event",
		zap.String("type", ev.Type),
		zap.Int64("order_id", ev.OrderID),
		zap.String("order_number", ev.OrderNumber),
	)

	if err := w.recordNotification(ctx, ev); err != nil {
		return err
	}
	if ev.Type == EventOrderCreated {
		return w.raiseLowStockAlerts(ctx, ev.OrderID)
	}
	return nil
}

func (w *Worker) recordNotification(ctx context.Context, ev OrderEvent) error {
	_, err := w.DB.Exec(ctx, `
		insert into notifications (kind, order_id, payload)
		values ($1,$2,$3)
	`, ev.Type, ev.OrderID, mustJSON(ev))
	return err
}

func (w *Worker) raiseLowStockAlerts(ctx context.Context, orderID int64) error {
	rows, err := w.DB.Query(ctx, `
		select i.id, i.name, i.quantity, i.min_quantity
		from order_items oi
		join items i on i.id = oi.item_id
		where oi.order_id = $1 and i.quantity <= i.min_quantity
	`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type alert struct {
		ItemID    int64  `json:"itemId"`
		ItemName  string `json:"itemName"`
		Quantity  int32  `json:"quantity"`
		MinimumAt int32  `json:"minQuantity"`
	}
	var alerts []alert
	for rows.Next() {
		var a alert
		if err := rows.Scan(&a.ItemID, &a.ItemName, &a.Quantity, &a.MinimumAt); err != nil {
			return err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, a := range alerts {
		w.Logger.Warn("low stock",
			zap.Int64("item_id", a.ItemID),
			zap.String("item", a.ItemName),
			zap.Int32("quantity", a.Quantity),
		)
		if _, err := w.DB.Exec(ctx, `
			insert into notifications (kind, item_id, payload)
			values ('item.low_stock', $1, $2)
		`, a.ItemID, mustJSON(a)); err != nil {
			return err
		}
	}
	return nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}

func (c *Client) consumeWithRetry(queue string, handler HandlerFunc, maxRetries int, retryDelay time.Duration) error {
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for msg := range msgs {
		ctx := context.Background()
		err := handler(ctx, msg.Body)
		if err == nil {
			_ = msg.Ack(false)
			continue
		}

		retryCount := getRetryCount(msg.Headers)
		if retryCount >= maxRetries {
			_ = msg.Nack(false, false)
			continue
		}

		retryCount++
		headers := msg.Headers
		if headers == nil {
			headers = amqp.Table{}
		}
		headers["x-retry-count"] = retryCount

		time.Sleep(retryDelay)
		_ = c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
			Timestamp:   time.Now(),
		})
		_ = msg.Ack(false)
	}

	return errors.New("consumer closed")
}

func getRetryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	if v, ok := headers["x-retry-count"]; ok {
		switch t := v.(type) {
		case int32:
			return int(t)
		case int64:
			return int(t)
		case int:
			return t
		}
	}
	return 0
}
