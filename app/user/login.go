package user

import (
	"net/http"

	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
)

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if !httpx.Bind(c, &data) {
		return
	}

	res, err := d.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	maxAge := int(v.GetDuration("jwt.ttl").Seconds())
	secure := v.GetBool("host.ssl.enabled")

	c.SetCookie("auth_token", res.Token, maxAge, "/", "", secure, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", secure, false)
	c.JSON(http.StatusOK, gin.H{
		"token":    res.Token,
		"userID":   res.User.ID,
		"verified": res.User.IsAccountVerified,
	})
}

// UserLogout clears the session cookies. The token itself stays valid until
// it expires, clients holding it in a header have to drop it themselves.
func UserLogout(c *gin.Context) {
	secure := v.GetBool("host.ssl.enabled")

	c.SetCookie("auth_token", "", -1, "/", "", secure, true)
	c.SetCookie("logged_in", "", -1, "/", "", secure, false)
	c.Status(http.StatusNoContent)
}
