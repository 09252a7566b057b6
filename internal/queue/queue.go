package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrderEventsExchange = "suq.events"
	OrderEventsQueue    = "suq.order_events"
	OrderEventsDLQ      = "suq.order_events.dlq"
	// '#' matches multi-segment keys like order.status.updated; '*' does not.
	OrderEventsRK     = "order.#"
	OrderEventsDeadRK = "dead"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EnsureOrderEventsTopology declares the order events exchange, the worker
// queue with its dead letter queue, and the bindings between them. Safe to
// call from both the API process and the worker.
func EnsureOrderEventsTopology(c *Client) error {
	if c == nil {
		return nil
	}

	if err := c.ch.ExchangeDeclare(OrderEventsExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := c.ch.QueueDeclare(OrderEventsDLQ, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.QueueBind(OrderEventsDLQ, OrderEventsDeadRK, OrderEventsExchange, false, nil); err != nil {
		return err
	}

	if _, err := c.ch.QueueDeclare(OrderEventsQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    OrderEventsExchange,
		"x-dead-letter-routing-key": OrderEventsDeadRK,
	}); err != nil {
		return err
	}
	return c.ch.QueueBind(OrderEventsQueue, OrderEventsRK, OrderEventsExchange, false, nil)
}

func (c *Client) publishJSON(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

// PublishOrderEvent routes the event by its type, e.g. order.created.
func (c *Client) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	if c == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return c.publishJSON(ctx, OrderEventsExchange, ev.Type, ev)
}
