package middleware

import (
	"context"
	"strings"

	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a session token to the caller
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

// NewJWTMiddleware rejects requests without a valid session. The token is
// read from the Authorization header first and the auth_token cookie second.
// Blocked users are turned away here on every request.
func NewJWTMiddleware(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httpx.Fail(c, service.ErrUnauthenticated)
			return
		}

		id, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		c.Set("userID", id.UserID)
		c.Set("identity", id)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	cookie, err := c.Cookie("auth_token")
	if err != nil {
		return ""
	}

	return cookie
}

// Identity returns the caller set by NewJWTMiddleware
func Identity(c *gin.Context) (*service.Identity, bool) {
	v, ok := c.Get("identity")
	if !ok {
		return nil, false
	}

	id, ok := v.(*service.Identity)
	return id, ok
}
