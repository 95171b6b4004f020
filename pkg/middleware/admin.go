package middleware

import (
	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOnly has to run after NewJWTMiddleware
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			httpx.Fail(c, service.ErrUnauthenticated)
			return
		}

		if !id.IsAdmin {
			httpx.Fail(c, service.ErrForbidden)
			return
		}

		c.Next()
	}
}
