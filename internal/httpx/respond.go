// Package httpx converts service results into the JSON responses the API
// sends back
package httpx

import (
	"errors"
	"net/http"

	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID returns the ID set by the request ID middleware
func RequestID(c *gin.Context) string {
	return c.GetString("requestID")
}

// UserID returns the ID of the authenticated caller
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}

// Status maps a service error to its HTTP status code
func Status(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrContentRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrTokenMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Fail aborts the request with the status matching err. Internal errors are
// logged and never shown to the client.
func Fail(c *gin.Context, err error) {
	requestID := RequestID(c)
	code := Status(err)

	msg := err.Error()
	if code == http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))
		msg = "Internal server error"
	}

	c.AbortWithStatusJSON(code, gin.H{
		"error":     msg,
		"requestID": requestID,
	})
}

// BadRequest aborts with 400 and a fixed message, used for unreadable bodies
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": RequestID(c),
	})
}

// Bind decodes the JSON body into dst and runs its binding rules. On failure
// the request is aborted and false is returned.
func Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", RequestID(c)))
		BadRequest(c, "Invalid request body")
		return false
	}

	return true
}
