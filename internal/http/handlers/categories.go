package handlers

import (
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/pkg/response"
)

type categoryPayload struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	BranchID      *int64  `json:"branchId"`
	BranchIDSnake *int64  `json:"branch_id"`
	Active        *bool   `json:"active"`
	IsActive      *bool   `json:"is_active"`
}

func (p categoryPayload) branchID() *int64 { return pickInt64(p.BranchID, p.BranchIDSnake) }
func (p categoryPayload) active() *bool    { return pickBool(p.Active, p.IsActive) }

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var (
		c           model.Category
		description pgtype.Text
		branchID    pgtype.Int8
	)
	err := row.Scan(&c.ID, &c.Name, &description, &branchID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	c.Description = textPtr(description)
	c.BranchID = int8Ptr(branchID)
	return c, err
}

func (h *Handler) CategoriesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `
		select id, name, description, branch_id, is_active, created_at, updated_at
		from categories
		order by name
	`)
	if err != nil {
		h.Logger.Error("categories list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch categories")
		return
	}
	defer rows.Close()

	categories := make([]model.Category, 0, 16)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			h.Logger.Error("categories scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch categories")
			return
		}
		categories = append(categories, c)
	}
	response.Success(w, categories)
}

func (h *Handler) CategoriesGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	c, err := scanCategory(h.DB.QueryRow(ctx, `
		select id, name, description, branch_id, is_active, created_at, updated_at
		from categories where id = $1
	`, id))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}
	response.Success(w, c)
}

func (h *Handler) CategoriesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body categoryPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	name := strings.TrimSpace(stringOrEmpty(body.Name))
	if name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required")
		return
	}
	active := true
	if v := body.active(); v != nil {
		active = *v
	}

	c, err := scanCategory(h.DB.QueryRow(ctx, `
		insert into categories (name, description, branch_id, is_active, updated_at)
		values ($1,$2,$3,$4, now())
		returning id, name, description, branch_id, is_active, created_at, updated_at
	`, name, nilIfBlank(body.Description), body.branchID(), active))
	if err != nil {
		h.Logger.Error("category create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create category")
		return
	}
	response.Created(w, c)
}

func (h *Handler) CategoriesUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	var body categoryPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	c, err := scanCategory(h.DB.QueryRow(ctx, `
		update categories set
			name = coalesce($2, name),
			description = coalesce($3, description),
			branch_id = coalesce($4, branch_id),
			is_active = coalesce($5, is_active),
			updated_at = now()
		where id = $1
		returning id, name, description, branch_id, is_active, created_at, updated_at
	`, id, nilIfBlank(body.Name), body.Description, body.branchID(), body.active()))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}
	response.Success(w, c)
}

func (h *Handler) CategoriesDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	tag, err := h.DB.Exec(ctx, `delete from categories where id = $1`, id)
	if err != nil {
		h.Logger.Error("category delete failed", zapError(err))
		response.Error(w, http.StatusConflict, "CONFLICT", "Category is still referenced")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}
	response.NoContent(w)
}
