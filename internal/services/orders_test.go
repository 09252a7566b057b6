package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{6}-\d{3}$`)
	for i := 0; i < 50; i++ {
		number := GenerateOrderNumber()
		assert.True(t, pattern.MatchString(number), "unexpected order number %q", number)
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{ItemID: 4, ItemName: "Sugar", Requested: 10, Available: 3}
	assert.Equal(t, `insufficient stock for "Sugar": requested 10, available 3`, err.Error())
}
