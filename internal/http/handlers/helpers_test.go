package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickStringPrefersFirstNonNil(t *testing.T) {
	camel := "  Bole Branch "
	snake := "other"

	got := pickString(&camel, &snake)
	require.NotNil(t, got)
	assert.Equal(t, "Bole Branch", *got)

	got = pickString(nil, &snake)
	require.NotNil(t, got)
	assert.Equal(t, "other", *got)

	assert.Nil(t, pickString(nil, nil))
}

func TestItemPayloadAcceptsBothWireShapes(t *testing.T) {
	camel := []byte(`{"name":"Sugar","minQuantity":5,"categoryId":2,"unitOfMeasure":"kg"}`)
	snake := []byte(`{"name":"Sugar","min_quantity":5,"category_id":2,"unit_of_measure":"kg"}`)

	var fromCamel, fromSnake itemPayload
	require.NoError(t, json.Unmarshal(camel, &fromCamel))
	require.NoError(t, json.Unmarshal(snake, &fromSnake))

	for name, body := range map[string]itemPayload{"camel": fromCamel, "snake": fromSnake} {
		minQty := body.minQuantity()
		categoryID := body.categoryID()
		unit := body.unitOfMeasure()

		require.NotNil(t, minQty, name)
		assert.Equal(t, int32(5), *minQty, name)
		require.NotNil(t, categoryID, name)
		assert.Equal(t, int64(2), *categoryID, name)
		require.NotNil(t, unit, name)
		assert.Equal(t, "kg", *unit, name)
	}
}

func TestNilIfBlank(t *testing.T) {
	blank := "   "
	value := "x"
	assert.Nil(t, nilIfBlank(nil))
	assert.Nil(t, nilIfBlank(&blank))
	assert.Equal(t, &value, nilIfBlank(&value))
}
