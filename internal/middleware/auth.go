package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Techtuskers-redefined/shopgenie/internal/token"

	"github.com/google/uuid"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// AuthMiddleware guards protected routes with a bearer access token.
// Verification is a pure signature and expiry check; no store lookup
// is made per request.
type AuthMiddleware struct {
	Tokens *token.Manager
}

func NewAuthMiddleware(tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read bearer credential
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 2. Verify access token; absence and invalidity respond
		//    identically
		userID, err := a.Tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 3. Attach user id to context
		ctx := context.WithValue(r.Context(), userIDKey, userID)

		// 4. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
