package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contacthub/internal/application"
	"contacthub/internal/domain/entity"
	repo "contacthub/internal/domain/repository"
	"contacthub/internal/interface/middleware"
	"contacthub/pkg/response"
	"contacthub/pkg/validation"
)

type ContactHandler struct {
	Svc    *application.ContactService
	Logger *logrus.Logger
}

func NewContactHandler(svc *application.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Svc: svc, Logger: logger}
}

type contactRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Favorite bool   `json:"favorite"`
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

func contactJSON(c *entity.Contact) gin.H {
	return gin.H{
		"id":       c.ID,
		"name":     c.Name,
		"email":    c.Email,
		"phone":    c.Phone,
		"favorite": c.Favorite,
	}
}

func contactID(c *gin.Context) (string, bool) {
	id := c.Param("contactId")
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid contact ID", nil)
		return "", false
	}
	return id, true
}

// List GET /api/contacts?page=&limit=&favorite=
func (h *ContactHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := repo.ListFilter{Page: page, Limit: limit}
	if fav := c.Query("favorite"); fav != "" {
		b, err := strconv.ParseBool(fav)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "favorite must be a boolean", nil)
			return
		}
		filter.Favorite = &b
	}

	contacts, err := h.Svc.List(c.Request.Context(), uid, filter)
	if err != nil {
		h.Logger.WithError(err).Error("list contacts failed")
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	out := make([]gin.H, 0, len(contacts))
	for i := range contacts {
		out = append(out, contactJSON(&contacts[i]))
	}
	response.JSON(c, http.StatusOK, out, "contacts", gin.H{"page": page, "limit": limit})
}

// Search GET /api/contacts/search?q=&size=
func (h *ContactHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	uid := c.GetString(middleware.CtxUserIDKey)
	hits, err := h.Svc.Search(c.Request.Context(), uid, q, size)
	if err != nil {
		h.Logger.WithError(err).Error("contact search failed")
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.JSON(c, http.StatusOK, hits, "search results", nil)
}

// Get GET /api/contacts/:contactId
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	contact, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.respondError(c, err, "get contact failed")
		return
	}
	response.JSON(c, http.StatusOK, contactJSON(contact), "contact", nil)
}

// Create POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	contact, err := h.Svc.Create(c.Request.Context(), uid, application.ContactInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Favorite: req.Favorite,
	})
	if err != nil {
		h.respondError(c, err, "create contact failed")
		return
	}
	response.JSON(c, http.StatusCreated, contactJSON(contact), "contact created", nil)
}

// Update PUT /api/contacts/:contactId
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	contact, err := h.Svc.Update(c.Request.Context(), uid, id, application.ContactInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Favorite: req.Favorite,
	})
	if err != nil {
		h.respondError(c, err, "update contact failed")
		return
	}
	response.JSON(c, http.StatusOK, contactJSON(contact), "contact updated", nil)
}

// UpdateFavorite PATCH /api/contacts/:contactId/favorite
func (h *ContactHandler) UpdateFavorite(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "missing field favorite", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	contact, err := h.Svc.UpdateFavorite(c.Request.Context(), uid, id, *req.Favorite)
	if err != nil {
		h.respondError(c, err, "update favorite failed")
		return
	}
	response.JSON(c, http.StatusOK, contactJSON(contact), "contact updated", nil)
}

// Delete DELETE /api/contacts/:contactId
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Delete(c.Request.Context(), uid, id); err != nil {
		h.respondError(c, err, "delete contact failed")
		return
	}
	response.JSON[any](c, http.StatusOK, nil, "Contact deleted", nil)
}

func (h *ContactHandler) respondError(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, application.ErrContactNotFound) {
		response.Fail(c, http.StatusNotFound, "Not found", nil)
		return
	}
	h.Logger.WithError(err).Error(logMsg)
	response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
}
