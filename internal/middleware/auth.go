package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"suq-dashboard-service/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID    int64
	SessionID int64
	Role      auth.UserRole
	Username  string
	BranchID  *int64
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// requestToken looks for the access token as a bearer header first, falling
// back to the session cookie the dashboard frontend sets.
func requestToken(r *http.Request) string {
	if token := auth.ParseBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// DashboardAuth guards /api/dashboard routes: the token must verify, the
// session must still be active in the database, the user must be active,
// and the role must be allowed to touch the requested resource.
func DashboardAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.VerifyAccessToken(requestToken(r), jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
				return
			}

			userID, err := strconv.ParseInt(claims.UserID, 10, 64)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
				return
			}
			sessionID, err := strconv.ParseInt(claims.SessionID, 10, 64)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
				return
			}

			var (
				role     string
				active   bool
				branchID *int64
			)
			query := `
				select u.role, u.is_active, u.business_branch
				from users u
				join user_sessions us on us.id = $2 and us.user_id = u.id
				  and us.status = 'ACTIVE' and us.expires_at > now()
				where u.id = $1
			`
			if err := db.QueryRow(r.Context(), query, userID, sessionID).Scan(&role, &active, &branchID); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session is no longer valid")
				return
			}

			if !active {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "User account is disabled")
				return
			}

			userRole := auth.UserRole(role)
			if resource := auth.ResourceForAPI(r.URL.Path); resource != nil {
				if !auth.HasAccess(userRole, *resource) {
					writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource")
					return
				}
			}

			authCtx := &AuthContext{
				UserID:    userID,
				SessionID: sessionID,
				Role:      userRole,
				Username:  claims.Username,
				BranchID:  branchID,
			}

			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}

// RejectAuthenticated turns away requests that already carry a valid token,
// mirroring the frontend rule that auth pages redirect signed-in users.
func RejectAuthenticated(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := requestToken(r); token != "" {
				if _, err := auth.VerifyAccessToken(token, jwtSecret); err == nil {
					writeAuthError(w, http.StatusConflict, "ALREADY_AUTHENTICATED", "Already signed in")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
