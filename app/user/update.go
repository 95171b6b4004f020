package user

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

type updateBody struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Bio       *string `json:"bio"`
}

type passwordBody struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// UserUpdate changes profile fields. It can't be used to change the password.
func UserUpdate(c *gin.Context, d *internal.Deps) {
	var data updateBody
	if !httpx.Bind(c, &data) {
		return
	}

	user, err := d.Auth.UpdateProfile(c.Request.Context(), httpx.UserID(c), service.ProfileInput{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Bio:       data.Bio,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func UserUpdatePassword(c *gin.Context, d *internal.Deps) {
	var data passwordBody
	if !httpx.Bind(c, &data) {
		return
	}

	err := d.Auth.UpdatePassword(c.Request.Context(), httpx.UserID(c), data.CurrentPassword, data.NewPassword)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
