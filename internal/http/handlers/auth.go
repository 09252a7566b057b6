package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"suq-dashboard-service/internal/auth"
	"suq-dashboard-service/internal/middleware"
	"suq-dashboard-service/pkg/response"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body loginPayload
	if err := decodeJSON(w, r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	if body.Username == "" || body.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required")
		return
	}

	var (
		userID       int64
		passwordHash string
		role         string
		fullName     string
		isActive     bool
		branchID     pgtype.Int8
	)
	err := h.DB.QueryRow(ctx, `
		select id, password_hash, role, full_name, is_active, business_branch
		from users
		where lower(username) = lower($1)
	`, body.Username).Scan(&userID, &passwordHash, &role, &fullName, &isActive, &branchID)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
		return
	}
	if !isActive {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Account is disabled")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(body.Password)) != nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
		return
	}

	expiry := time.Duration(h.Config.JWTExpirySeconds) * time.Second
	var sessionID int64
	if err := h.DB.QueryRow(ctx, `
		insert into user_sessions (user_id, status, expires_at)
		values ($1, 'ACTIVE', $2)
		returning id
	`, userID, time.Now().Add(expiry)).Scan(&sessionID); err != nil {
		h.Logger.Error("session create failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	claims := &auth.Claims{
		UserID:    fmt.Sprint(userID),
		SessionID: fmt.Sprint(sessionID),
		Role:      auth.UserRole(role),
		Username:  body.Username,
	}
	if branchID.Valid {
		b := fmt.Sprint(branchID.Int64)
		claims.BranchID = &b
	}
	token, err := auth.SignAccessToken(claims, h.Config.JWTSecret, expiry)
	if err != nil {
		h.Logger.Error("token sign failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	if _, err := h.DB.Exec(ctx, `update users set last_login = now() where id = $1`, userID); err != nil {
		h.Logger.Warn("last login update failed", zapError(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Config.Env != "development",
		MaxAge:   int(expiry.Seconds()),
	})

	response.Success(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       userID,
			"username": body.Username,
			"name":     fullName,
			"role":     role,
			"branchId": int8Ptr(branchID),
		},
	})
}

func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if authCtx, ok := middleware.GetAuthContext(ctx); ok {
		if _, err := h.DB.Exec(ctx, `
			update user_sessions set status = 'REVOKED' where id = $1
		`, authCtx.SessionID); err != nil {
			h.Logger.Warn("session revoke failed", zapError(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	response.Success(w, map[string]any{"loggedOut": true})
}

func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var (
		username  string
		fullName  string
		role      string
		email     pgtype.Text
		phone     string
		branchID  pgtype.Int8
		lastLogin pgtype.Timestamptz
	)
	err := h.DB.QueryRow(ctx, `
		select username, full_name, role, email, phone, business_branch, last_login
		from users
		where id = $1
	`, authCtx.UserID).Scan(&username, &fullName, &role, &email, &phone, &branchID, &lastLogin)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	response.Success(w, map[string]any{
		"id":        authCtx.UserID,
		"username":  username,
		"name":      fullName,
		"role":      role,
		"email":     textPtr(email),
		"phone":     phone,
		"branchId":  int8Ptr(branchID),
		"lastLogin": timePtr(lastLogin),
	})
}
