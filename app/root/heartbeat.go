// Package root holds handlers that don't belong to any resource
package root

import (
	"net/http"

	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate only runs after the auth middleware accepted the token
func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID": httpx.UserID(c),
	})
}
