package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suq-dashboard-service/internal/model"
)

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "branches-export-03-09-2024.csv", exportFilename("branches", now))
	assert.Equal(t, "orders-export-03-09-2024.csv", exportFilename("orders", now))
}

func TestBranchRecordsBooleanLiterals(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	records := branchRecords([]model.Branch{
		{ID: 1, Name: "Bole", Address: "Addis Ababa", ContactNumber: "+251911223344", Active: true, CreatedAt: created},
		{ID: 2, Name: "Piassa", Active: false, CreatedAt: created},
	})

	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "name", "address", "contactNumber", "active", "createdAt"}, records[0])
	assert.Equal(t, "true", records[1][4])
	assert.Equal(t, "false", records[2][4])
}

func TestOrderRecordsFlattenPerLine(t *testing.T) {
	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	email := "abebe@example.com"
	orders := []model.Order{
		{
			OrderNumber:   "ORD-123456-001",
			CustomerName:  "Abebe",
			CustomerPhone: "+251911000001",
			CustomerEmail: &email,
			Status:        model.OrderPending,
			PaymentStatus: model.PaymentPaid,
			OrderDate:     date,
			Total:         350,
			UserID:        7,
			Lines: []model.OrderLine{
				{ItemID: 10, Quantity: 2, UnitPrice: 100},
				{ItemID: 11, Quantity: 3, UnitPrice: 50},
			},
		},
	}

	records := orderRecords(orders)
	require.Len(t, records, 3)

	first := records[1]
	assert.Equal(t, "ORD-123456-001", first[0])
	assert.Equal(t, "10", first[4])
	assert.Equal(t, "2", first[5])
	assert.Equal(t, "100.00", first[6])
	assert.Equal(t, "pending", first[7])
	assert.Equal(t, "paid", first[8])
	assert.Equal(t, "350.00", first[10])
	assert.Equal(t, "7", first[11])

	second := records[2]
	assert.Equal(t, "11", second[4])
	assert.Equal(t, "3", second[5])

	// Shared order fields repeat on every flattened row.
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, first[10], second[10])
}

func TestOrderRecordsKeepsLinelessOrders(t *testing.T) {
	records := orderRecords([]model.Order{{OrderNumber: "ORD-000001-000", OrderDate: time.Now()}})
	require.Len(t, records, 2)
	assert.Equal(t, "ORD-000001-000", records[1][0])
	assert.Equal(t, "", records[1][4])
	assert.Equal(t, "", records[1][5])
}

func TestUserRecordsOmitEmptyOptionals(t *testing.T) {
	records := userRecords([]model.User{{ID: 3, Username: "sara", Name: "Sara", Phone: "+251922334455", Role: "sales", Active: true, CreatedAt: time.Now()}})
	require.Len(t, records, 2)
	assert.Equal(t, "", records[1][3]) // email
	assert.Equal(t, "", records[1][6]) // branchId
	assert.Equal(t, "", records[1][8]) // lastLogin
}
