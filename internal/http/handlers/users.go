package handlers

import (
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"suq-dashboard-service/internal/auth"
	"suq-dashboard-service/internal/middleware"
	"suq-dashboard-service/internal/model"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

type userPayload struct {
	Username       *string `json:"username"`
	Name           *string `json:"name"`
	FullName       *string `json:"full_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Password       *string `json:"password"`
	Role           *string `json:"role"`
	BranchID       *int64  `json:"branchId"`
	BusinessBranch *int64  `json:"business_branch"`
	Active         *bool   `json:"active"`
	IsActive       *bool   `json:"is_active"`
}

func (p userPayload) name() *string    { return pickString(p.Name, p.FullName) }
func (p userPayload) branchID() *int64 { return pickInt64(p.BranchID, p.BusinessBranch) }
func (p userPayload) active() *bool    { return pickBool(p.Active, p.IsActive) }

const userColumns = `id, username, full_name, email, phone, role, business_branch, is_active, last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u         model.User
		email     pgtype.Text
		branchID  pgtype.Int8
		lastLogin pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Username, &u.Name, &email, &u.Phone, &u.Role, &branchID, &u.Active, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	u.Email = textPtr(email)
	u.BranchID = int8Ptr(branchID)
	u.LastLogin = timePtr(lastLogin)
	return u, err
}

func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.DB.Query(ctx, `select `+userColumns+` from users order by username`)
	if err != nil {
		h.Logger.Error("users list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch users")
		return
	}
	defer rows.Close()

	users := make([]model.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			h.Logger.Error("users scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch users")
			return
		}
		users = append(users, u)
	}
	response.Success(w, users)
}

func (h *Handler) UsersGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	u, err := scanUser(h.DB.QueryRow(ctx, `select `+userColumns+` from users where id = $1`, id))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	response.Success(w, u)
}

func (h *Handler) UsersCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body userPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	username := strings.TrimSpace(stringOrEmpty(body.Username))
	name := strings.TrimSpace(stringOrEmpty(body.name()))
	password := stringOrEmpty(body.Password)
	role := strings.TrimSpace(stringOrEmpty(body.Role))
	phone := strings.TrimSpace(stringOrEmpty(body.Phone))

	if username == "" || name == "" || phone == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Username, name and phone are required")
		return
	}
	if len(password) < 8 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
		return
	}
	if !auth.ValidRole(role) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown role")
		return
	}
	phone = utils.NormalizePhone(phone, h.Config.DefaultCountryCode)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.Logger.Error("password hash failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}

	active := true
	if v := body.active(); v != nil {
		active = *v
	}

	u, err := scanUser(h.DB.QueryRow(ctx, `
		insert into users (username, full_name, email, phone, password_hash, role, business_branch, is_active, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8, now())
		returning `+userColumns+`
	`, username, name, nilIfBlank(body.Email), phone, string(hash), role, body.branchID(), active))
	if err != nil {
		h.Logger.Error("user create failed", zapError(err))
		response.Error(w, http.StatusConflict, "CONFLICT", "Username already taken")
		return
	}
	response.Created(w, u)
}

func (h *Handler) UsersUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	var body userPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if body.Role != nil && !auth.ValidRole(*body.Role) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown role")
		return
	}

	phone := body.Phone
	if phone != nil && *phone != "" {
		normalized := utils.NormalizePhone(*phone, h.Config.DefaultCountryCode)
		phone = &normalized
	}

	var passwordHash *string
	if body.Password != nil && *body.Password != "" {
		if len(*body.Password) < 8 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			h.Logger.Error("password hash failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user")
			return
		}
		s := string(hash)
		passwordHash = &s
	}

	u, err := scanUser(h.DB.QueryRow(ctx, `
		update users set
			username = coalesce($2, username),
			full_name = coalesce($3, full_name),
			email = coalesce($4, email),
			phone = coalesce($5, phone),
			password_hash = coalesce($6, password_hash),
			role = coalesce($7, role),
			business_branch = coalesce($8, business_branch),
			is_active = coalesce($9, is_active),
			updated_at = now()
		where id = $1
		returning `+userColumns+`
	`, id, nilIfBlank(body.Username), nilIfBlank(body.name()), body.Email, phone,
		passwordHash, nilIfBlank(body.Role), body.branchID(), body.active()))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	response.Success(w, u)
}

func (h *Handler) UsersDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	if authCtx, ok := middleware.GetAuthContext(ctx); ok && authCtx.UserID == id {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "You cannot delete your own account")
		return
	}

	// Users who have placed orders are deactivated so the order history keeps
	// its author.
	tag, err := h.DB.Exec(ctx, `
		delete from users u
		where u.id = $1 and not exists (select 1 from orders o where o.created_by = u.id)
	`, id)
	if err != nil {
		h.Logger.Error("user delete failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user")
		return
	}
	if tag.RowsAffected() == 0 {
		deactivated, err := h.DB.Exec(ctx, `update users set is_active = false, updated_at = now() where id = $1`, id)
		if err != nil || deactivated.RowsAffected() == 0 {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
	}
	response.NoContent(w)
}
