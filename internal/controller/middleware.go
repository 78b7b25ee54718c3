package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthContext — данные вошедшего пользователя из токена.
type AuthContext struct {
	UserID string
	Role   string
}

// Authenticate проверяет Bearer-токен и кладёт данные пользователя в контекст.
func (c *Controller) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, c.logger, apperror.Unauthorized("missing bearer token"))
			return
		}

		claims, err := c.auth.ParseToken(token)
		if err != nil {
			writeError(w, c.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, AuthContext{
			UserID: claims.Subject,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole пропускает только перечисленные роли.
func (c *Controller) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := authFrom(r.Context())
			if !ok {
				writeError(w, c.logger, apperror.Unauthorized("not authenticated"))
				return
			}
			for _, role := range roles {
				if auth.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			c.logger.Warn("Access denied",
				zap.String("user_id", auth.UserID),
				zap.String("role", auth.Role),
				zap.String("path", r.URL.Path),
			)
			writeError(w, c.logger, apperror.Forbidden("insufficient role"))
		})
	}
}

func authFrom(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(claimsKey).(AuthContext)
	return auth, ok
}
