// Package post holds the handlers of the /api/posts routes
package post

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/service"

	"github.com/gin-gonic/gin"
)

type postBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
}

func (b postBody) input() service.PostInput {
	return service.PostInput{
		Title:       b.Title,
		Description: b.Description,
		Category:    b.Category,
	}
}

// PostCreate publishes a post. Profane content gets the author blocked and
// the post is never stored.
func PostCreate(c *gin.Context, d *internal.Deps) {
	var data postBody
	if !httpx.Bind(c, &data) {
		return
	}

	post, err := d.Posts.Create(c.Request.Context(), httpx.UserID(c), data.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"post": post,
	})
}
