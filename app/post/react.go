package post

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

type reactBody struct {
	ID string `json:"id" binding:"required"`
}

// PostToggleLike likes the post, or removes the like when already liked.
// A dislike is replaced by the like.
func PostToggleLike(c *gin.Context, d *internal.Deps) {
	var data reactBody
	if !httpx.Bind(c, &data) {
		return
	}

	state, err := d.Reactions.ToggleLike(c.Request.Context(), httpx.UserID(c), data.ID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

func PostToggleDislike(c *gin.Context, d *internal.Deps) {
	var data reactBody
	if !httpx.Bind(c, &data) {
		return
	}

	state, err := d.Reactions.ToggleDislike(c.Request.Context(), httpx.UserID(c), data.ID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}
