package model

import "time"

type Branch struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	ContactNumber string    `json:"contactNumber"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	BranchID    *int64    `json:"branchId,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UnitOfMeasure string

const (
	UnitPieces UnitOfMeasure = "pieces"
	UnitKg     UnitOfMeasure = "kg"
	UnitGram   UnitOfMeasure = "g"
	UnitLiter  UnitOfMeasure = "L"
	UnitMl     UnitOfMeasure = "ml"
	UnitMeter  UnitOfMeasure = "m"
	UnitBox    UnitOfMeasure = "box"
	UnitPack   UnitOfMeasure = "pack"
)

func ValidUnitOfMeasure(v string) bool {
	switch UnitOfMeasure(v) {
	case UnitPieces, UnitKg, UnitGram, UnitLiter, UnitMl, UnitMeter, UnitBox, UnitPack:
		return true
	}
	return false
}

type Item struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   *string        `json:"description,omitempty"`
	Price         float64        `json:"price"`
	Quantity      int32          `json:"quantity"`
	MinQuantity   int32          `json:"minQuantity"`
	MaxQuantity   int32          `json:"maxQuantity"`
	UnitOfMeasure *UnitOfMeasure `json:"unitOfMeasure,omitempty"`
	CategoryID    *int64         `json:"categoryId,omitempty"`
	BranchID      *int64         `json:"branchId,omitempty"`
	ImageURL      *string        `json:"imageUrl,omitempty"`
	Active        bool           `json:"active"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
