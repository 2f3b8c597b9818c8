package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contacthub/internal/application"
	"contacthub/pkg/helpers"
	"contacthub/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Auth resolves the bearer token to an authenticated user or rejects the
// request before any handler runs. The token must verify AND textually match
// the user's stored session token, so logout or a newer login invalidates it
// immediately, independent of its own expiry. Expiry is the only failure
// reported distinctly; everything else answers a uniform "Not authorized".
func Auth(sessions *application.SessionManager, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, _ := strings.Cut(c.GetHeader("Authorization"), " ")
		if scheme != "Bearer" || token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "Not authorized", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		claims, err := jwt.ParseSessionToken(token)
		if err != nil {
			msg := "Not authorized"
			if helpers.IsExpired(err) {
				msg = "Token expired"
			}
			resp := response.Error[any](c, http.StatusUnauthorized, msg, nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		u, err := sessions.Validate(c.Request.Context(), claims.UserID, token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "Not authorized", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}
