package modules

import (
	"github.com/gin-gonic/gin"

	"contacthub/internal/application"
	handlers "contacthub/internal/interface/http"
	"contacthub/internal/interface/middleware"
	"contacthub/pkg/helpers"
)

// ContactModule wires contact routes; everything requires authentication and
// is scoped to the resolved owner.
type ContactModule struct {
	Handler  *handlers.ContactHandler
	Sessions *application.SessionManager
	JWT      *helpers.JWTManager
}

func NewContactModule(h *handlers.ContactHandler, sessions *application.SessionManager, jwt *helpers.JWTManager) *ContactModule {
	return &ContactModule{Handler: h, Sessions: sessions, JWT: jwt}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	contacts.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		contacts.GET("", m.Handler.List)
		contacts.GET("/search", m.Handler.Search)
		contacts.GET("/:contactId", m.Handler.Get)
		contacts.POST("", m.Handler.Create)
		contacts.PUT("/:contactId", m.Handler.Update)
		contacts.PATCH("/:contactId/favorite", m.Handler.UpdateFavorite)
		contacts.DELETE("/:contactId", m.Handler.Delete)
	}
}
