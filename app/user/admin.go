package user

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

func UserBlock(c *gin.Context, d *internal.Deps) {
	if err := d.Admin.Block(c.Request.Context(), httpx.UserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userID":  c.Param("id"),
		"blocked": true,
	})
}

func UserUnblock(c *gin.Context, d *internal.Deps) {
	if err := d.Admin.Unblock(c.Request.Context(), httpx.UserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userID":  c.Param("id"),
		"blocked": false,
	})
}

func UserDelete(c *gin.Context, d *internal.Deps) {
	if err := d.Admin.DeleteUser(c.Request.Context(), httpx.UserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
