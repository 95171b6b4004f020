package post

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

func PostUpdate(c *gin.Context, d *internal.Deps) {
	var data postBody
	if !httpx.Bind(c, &data) {
		return
	}

	post, err := d.Posts.Update(c.Request.Context(), httpx.UserID(c), c.Param("id"), data.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post": post,
	})
}

func PostDelete(c *gin.Context, d *internal.Deps) {
	if err := d.Posts.Delete(c.Request.Context(), httpx.UserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
