package user

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

type targetBody struct {
	ID string `json:"id" binding:"required"`
}

func UserFollow(c *gin.Context, d *internal.Deps) {
	var data targetBody
	if !httpx.Bind(c, &data) {
		return
	}

	if err := d.Graph.Follow(c.Request.Context(), httpx.UserID(c), data.ID); err != nil {
		httpx.Fail(c, err)
		return
	}

	following, err := d.Graph.Following(c.Request.Context(), httpx.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
	})
}

func UserUnfollow(c *gin.Context, d *internal.Deps) {
	var data targetBody
	if !httpx.Bind(c, &data) {
		return
	}

	if err := d.Graph.Unfollow(c.Request.Context(), httpx.UserID(c), data.ID); err != nil {
		httpx.Fail(c, err)
		return
	}

	following, err := d.Graph.Following(c.Request.Context(), httpx.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
	})
}
