package modules

import (
	"github.com/gin-gonic/gin"

	"contacthub/internal/application"
	handlers "contacthub/internal/interface/http"
	"contacthub/internal/interface/middleware"
	"contacthub/pkg/helpers"
)

// AuthModule wires account routes.
// Public: POST /api/users/signup, POST /api/users/login,
// GET /api/users/verify/:verificationToken, POST /api/users/verify
// Protected: POST /api/users/logout, GET /api/users/current,
// PATCH /api/users/subscription, PATCH /api/users/avatars
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions *application.SessionManager
	JWT      *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, sessions *application.SessionManager, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	users.POST("/signup", m.Handler.Signup)
	users.POST("/login", m.Handler.Login)
	users.GET("/verify/:verificationToken", m.Handler.VerifyToken)
	users.POST("/verify", m.Handler.ResendVerify)

	auth := users.Group("/")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/current", m.Handler.Current)
		auth.PATCH("/subscription", m.Handler.UpdateSubscription)
		auth.PATCH("/avatars", m.Handler.UpdateAvatar)
	}
}
