// Package user holds the handlers of the /api/users routes
package user

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data registerBody
	if !httpx.Bind(c, &data) {
		return
	}

	user, err := d.Auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     data.Email,
		Password:  data.Password,
		FirstName: data.FirstName,
		LastName:  data.LastName,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": user,
	})
}
