package handlers

import (
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

type itemPayload struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Price            *float64 `json:"price"`
	Quantity         *int32   `json:"quantity"`
	MinQuantity      *int32   `json:"minQuantity"`
	MinQuantitySnake *int32   `json:"min_quantity"`
	MaxQuantity      *int32   `json:"maxQuantity"`
	MaxQuantitySnake *int32   `json:"max_quantity"`
	UnitOfMeasure    *string  `json:"unitOfMeasure"`
	UnitSnake        *string  `json:"unit_of_measure"`
	CategoryID       *int64   `json:"categoryId"`
	CategoryIDSnake  *int64   `json:"category_id"`
	BranchID         *int64   `json:"branchId"`
	BranchIDSnake    *int64   `json:"branch_id"`
	Active           *bool    `json:"active"`
	IsActive         *bool    `json:"is_active"`
}

func (p itemPayload) minQuantity() *int32    { return pickInt32(p.MinQuantity, p.MinQuantitySnake) }
func (p itemPayload) maxQuantity() *int32    { return pickInt32(p.MaxQuantity, p.MaxQuantitySnake) }
func (p itemPayload) unitOfMeasure() *string { return pickString(p.UnitOfMeasure, p.UnitSnake) }
func (p itemPayload) categoryID() *int64     { return pickInt64(p.CategoryID, p.CategoryIDSnake) }
func (p itemPayload) branchID() *int64       { return pickInt64(p.BranchID, p.BranchIDSnake) }
func (p itemPayload) active() *bool          { return pickBool(p.Active, p.IsActive) }

const itemColumns = `id, name, description, price, quantity, min_quantity, max_quantity,
	unit_of_measure, category_id, branch_id, image_url, is_active, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (model.Item, error) {
	var (
		it          model.Item
		description pgtype.Text
		price       pgtype.Numeric
		unit        pgtype.Text
		categoryID  pgtype.Int8
		branchID    pgtype.Int8
		imageURL    pgtype.Text
	)
	err := row.Scan(
		&it.ID, &it.Name, &description, &price, &it.Quantity, &it.MinQuantity, &it.MaxQuantity,
		&unit, &categoryID, &branchID, &imageURL, &it.Active, &it.CreatedAt, &it.UpdatedAt,
	)
	it.Description = textPtr(description)
	it.Price = utils.NumericToFloat64(price)
	if unit.Valid {
		u := model.UnitOfMeasure(unit.String)
		it.UnitOfMeasure = &u
	}
	it.CategoryID = int8Ptr(categoryID)
	it.BranchID = int8Ptr(branchID)
	it.ImageURL = textPtr(imageURL)
	return it, err
}

func (h *Handler) ItemsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `select `+itemColumns+` from items order by name`)
	if err != nil {
		h.Logger.Error("items list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch items")
		return
	}
	defer rows.Close()

	items := make([]model.Item, 0, 32)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			h.Logger.Error("items scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch items")
			return
		}
		items = append(items, it)
	}
	response.Success(w, items)
}

func (h *Handler) ItemsGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	it, err := scanItem(h.DB.QueryRow(ctx, `select `+itemColumns+` from items where id = $1`, id))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}
	response.Success(w, it)
}

func (h *Handler) ItemsCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body itemPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	name := strings.TrimSpace(stringOrEmpty(body.Name))
	if name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item name is required")
		return
	}
	if body.Price == nil || *body.Price < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A non-negative price is required")
		return
	}
	quantity := int32(0)
	if body.Quantity != nil {
		if *body.Quantity < 0 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity cannot be negative")
			return
		}
		quantity = *body.Quantity
	}
	if unit := body.unitOfMeasure(); unit != nil && *unit != "" && !model.ValidUnitOfMeasure(*unit) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown unit of measure")
		return
	}
	active := true
	if v := body.active(); v != nil {
		active = *v
	}

	it, err := scanItem(h.DB.QueryRow(ctx, `
		insert into items (name, description, price, quantity, min_quantity, max_quantity,
			unit_of_measure, category_id, branch_id, is_active, updated_at)
		values ($1,$2,$3,$4, coalesce($5,0), coalesce($6,0), $7,$8,$9,$10, now())
		returning `+itemColumns+`
	`, name, nilIfBlank(body.Description), *body.Price, quantity,
		body.minQuantity(), body.maxQuantity(), nilIfBlank(body.unitOfMeasure()),
		body.categoryID(), body.branchID(), active))
	if err != nil {
		h.Logger.Error("item create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create item")
		return
	}
	response.Created(w, it)
}

func (h *Handler) ItemsUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	var body itemPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.Price != nil && *body.Price < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Price cannot be negative")
		return
	}
	if body.Quantity != nil && *body.Quantity < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity cannot be negative")
		return
	}
	if unit := body.unitOfMeasure(); unit != nil && *unit != "" && !model.ValidUnitOfMeasure(*unit) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown unit of measure")
		return
	}

	it, err := scanItem(h.DB.QueryRow(ctx, `
		update items set
			name = coalesce($2, name),
			description = coalesce($3, description),
			price = coalesce($4, price),
			quantity = coalesce($5, quantity),
			min_quantity = coalesce($6, min_quantity),
			max_quantity = coalesce($7, max_quantity),
			unit_of_measure = coalesce($8, unit_of_measure),
			category_id = coalesce($9, category_id),
			branch_id = coalesce($10, branch_id),
			is_active = coalesce($11, is_active),
			updated_at = now()
		where id = $1
		returning `+itemColumns+`
	`, id, nilIfBlank(body.Name), body.Description, body.Price, body.Quantity,
		body.minQuantity(), body.maxQuantity(), nilIfBlank(body.unitOfMeasure()),
		body.categoryID(), body.branchID(), body.active()))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}
	response.Success(w, it)
}

func (h *Handler) ItemsDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	tag, err := h.DB.Exec(ctx, `delete from items where id = $1`, id)
	if err != nil {
		h.Logger.Error("item delete failed", zapError(err))
		response.Error(w, http.StatusConflict, "CONFLICT", "Item is still referenced by orders")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}
	response.NoContent(w)
}
