package handlers

import (
	"net/http"
	"strings"

	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

type branchPayload struct {
	Name               *string `json:"name"`
	Address            *string `json:"address"`
	ContactNumber      *string `json:"contactNumber"`
	ContactNumberSnake *string `json:"contact_number"`
	Active             *bool   `json:"active"`
	IsActive           *bool   `json:"is_active"`
}

func (p branchPayload) contactNumber() *string {
	return pickString(p.ContactNumber, p.ContactNumberSnake)
}

func (p branchPayload) active() *bool {
	return pickBool(p.Active, p.IsActive)
}

func (h *Handler) BranchesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `
		select id, name, address, contact_number, is_active, created_at, updated_at
		from branches
		order by name
	`)
	if err != nil {
		h.Logger.Error("branches list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch branches")
		return
	}
	defer rows.Close()

	branches := make([]model.Branch, 0, 8)
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.ContactNumber, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			h.Logger.Error("branches scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch branches")
			return
		}
		branches = append(branches, b)
	}
	response.Success(w, branches)
}

func (h *Handler) BranchesGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid branch id")
		return
	}

	var b model.Branch
	err = h.DB.QueryRow(ctx, `
		select id, name, address, contact_number, is_active, created_at, updated_at
		from branches where id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Address, &b.ContactNumber, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Branch not found")
		return
	}
	response.Success(w, b)
}

func (h *Handler) BranchesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body branchPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	name := strings.TrimSpace(stringOrEmpty(body.Name))
	if name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Branch name is required")
		return
	}
	contact := stringOrEmpty(body.contactNumber())
	if contact != "" {
		contact = utils.NormalizePhone(contact, h.Config.DefaultCountryCode)
	}
	active := true
	if v := body.active(); v != nil {
		active = *v
	}

	var b model.Branch
	err := h.DB.QueryRow(ctx, `
		insert into branches (name, address, contact_number, is_active, updated_at)
		values ($1,$2,$3,$4, now())
		returning id, name, address, contact_number, is_active, created_at, updated_at
	`, name, stringOrEmpty(body.Address), contact, active).
		Scan(&b.ID, &b.Name, &b.Address, &b.ContactNumber, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		h.Logger.Error("branch create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create branch")
		return
	}
	response.Created(w, b)
}

func (h *Handler) BranchesUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid branch id")
		return
	}

	var body branchPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	contact := body.contactNumber()
	if contact != nil && *contact != "" {
		normalized := utils.NormalizePhone(*contact, h.Config.DefaultCountryCode)
		contact = &normalized
	}

	var b model.Branch
	err = h.DB.QueryRow(ctx, `
		update branches set
			name = coalesce($2, name),
			address = coalesce($3, address),
			contact_number = coalesce($4, contact_number),
			is_active = coalesce($5, is_active),
			updated_at = now()
		where id = $1
		returning id, name, address, contact_number, is_active, created_at, updated_at
	`, id, nilIfBlank(body.Name), body.Address, contact, body.active()).
		Scan(&b.ID, &b.Name, &b.Address, &b.ContactNumber, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Branch not found")
		return
	}
	response.Success(w, b)
}

func (h *Handler) BranchesDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid branch id")
		return
	}

	tag, err := h.DB.Exec(ctx, `delete from branches where id = $1`, id)
	if err != nil {
		h.Logger.Error("branch delete failed", zapError(err))
		response.Error(w, http.StatusConflict, "CONFLICT", "Branch is still referenced")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Branch not found")
		return
	}
	response.NoContent(w)
}
