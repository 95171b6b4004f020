package user

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"
	"inkwell/blog-api/internal/model"

	"github.com/gin-gonic/gin"
)

// publicUser is what anyone may see about a user
type publicUser struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Bio       string   `json:"bio"`
	Followers []string `json:"followers"`
	Following []string `json:"following"`
}

func toPublic(u *model.User) publicUser {
	return publicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Followers: u.Followers,
		Following: u.Following,
	}
}

// UserDetails returns the public profile of any user
func UserDetails(c *gin.Context, d *internal.Deps) {
	user, err := d.Auth.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": toPublic(user),
	})
}

// UserProfile returns the full profile of the caller
func UserProfile(c *gin.Context, d *internal.Deps) {
	user, err := d.Auth.Profile(c.Request.Context(), httpx.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func UserList(c *gin.Context, d *internal.Deps) {
	users, err := d.Admin.ListUsers(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}
