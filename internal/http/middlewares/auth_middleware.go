package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/bookmarkhub/internal/actorctx"
	"github.com/geocoder89/bookmarkhub/internal/auth"
	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// Guard resolves a bearer token to a stored user.
type Guard struct {
	tokens TokenVerifier
	users  UserLoader
}

func NewGuard(tokens TokenVerifier, users UserLoader) *Guard {
	return &Guard{tokens: tokens, users: users}
}

func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := g.tokens.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		id, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		u, err := g.users.GetByID(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				slog.Default().ErrorContext(c.Request.Context(), "guard: load user", "user_id", id, "err", err)
			}
			// a token for a deleted account is as good as no token
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		c.Set(CtxCaller, u)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

// CallerFromContext returns the user attached by RequireAuth.
func CallerFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxCaller)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

// WithCaller adapts a handler that needs the authenticated user. It must be
// mounted behind RequireAuth.
func WithCaller(fn func(c *gin.Context, caller user.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		fn(c, caller)
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	abortWithError(c, http.StatusUnauthorized, "unauthorized", message)
}

// abortWithError writes the same envelope as handlers.RespondError; the
// handlers package is not imported here to keep the dependency one way.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if reqID := c.GetString(CtxRequestID); reqID != "" {
		body["requestId"] = reqID
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
