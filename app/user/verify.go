package user

import (
	"errors"
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

type tokenBody struct {
	Token string `json:"token" binding:"required"`
}

type forgotBody struct {
	Email string `json:"email" binding:"required"`
}

type resetBody struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserStartVerification mails a fresh link. The secret only ever leaves the
// server inside that link.
func UserStartVerification(c *gin.Context, d *internal.Deps) {
	if _, err := d.Verify.StartAccountVerification(c.Request.Context(), httpx.UserID(c)); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification link sent, check your inbox",
	})
}

func UserVerify(c *gin.Context, d *internal.Deps) {
	var data tokenBody
	if !httpx.Bind(c, &data) {
		return
	}

	if err := d.Verify.CompleteAccountVerification(c.Request.Context(), httpx.UserID(c), data.Token); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified": true,
	})
}

// UserForgotPassword answers the same way whether or not the email is
// registered
func UserForgotPassword(c *gin.Context, d *internal.Deps) {
	var data forgotBody
	if !httpx.Bind(c, &data) {
		return
	}

	_, err := d.Verify.StartPasswordReset(c.Request.Context(), data.Email)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If this email is registered a reset link has been sent",
	})
}

func UserResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if !httpx.Bind(c, &data) {
		return
	}

	if err := d.Verify.CompletePasswordReset(c.Request.Context(), data.Token, data.Password); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
