package post

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

func PostList(c *gin.Context, d *internal.Deps) {
	posts, err := d.Posts.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
	})
}

// PostFetch counts as a view
func PostFetch(c *gin.Context, d *internal.Deps) {
	post, err := d.Posts.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post": post,
	})
}
