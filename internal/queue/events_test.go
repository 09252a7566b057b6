package queue

import (
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestOrderEventTypes(t *testing.T) {
	types := []string{
		EventOrderCreated,
		EventOrderUpdated,
		EventOrderStatusUpdated,
		EventOrderPaymentUpdated,
		EventOrderDeleted,
	}

	seen := make(map[string]bool, len(types))
	for _, tp := range types {
		// Every event type doubles as the routing key and the notifications
		// kind column, so they all ride the order.# binding and stay unique.
		assert.True(t, strings.HasPrefix(tp, "order."), "type %q must match the queue binding", tp)
		assert.False(t, seen[tp], "type %q declared twice", tp)
		seen[tp] = true
	}

	assert.Equal(t, "order.updated", EventOrderUpdated)
	assert.NotEqual(t, EventOrderUpdated, EventOrderStatusUpdated)
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 0, getRetryCount(nil))
	assert.Equal(t, 2, getRetryCount(amqp.Table{"x-retry-count": int32(2)}))
	assert.Equal(t, 3, getRetryCount(amqp.Table{"x-retry-count": int64(3)}))
}
