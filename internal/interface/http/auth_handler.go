package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contacthub/internal/application"
	"contacthub/internal/domain/entity"
	"contacthub/internal/interface/middleware"
	"contacthub/pkg/response"
	"contacthub/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func (h *AuthHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	h.Svc.RecordAudit(c.Request.Context(), userID, email, action, clientIP(c), c.GetHeader("User-Agent"), metadata)
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type subscriptionRequest struct {
	Subscription string `json:"subscription" binding:"required,subscription"`
}

type resendVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func userSummary(u *entity.User) gin.H {
	return gin.H{
		"email":        u.Email,
		"subscription": u.Subscription,
	}
}

// Signup POST /api/users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrEmailInUse) {
			response.Fail(c, http.StatusConflict, "Email in use", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.audit(c, u.ID, u.Email, "signup", nil)

	response.JSON(c, http.StatusCreated, gin.H{
		"user": gin.H{
			"email":        u.Email,
			"subscription": u.Subscription,
			"avatar_url":   u.AvatarURL,
		},
	}, "account created, verification email sent", nil)
}

// Login POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotVerified):
			response.Fail(c, http.StatusUnauthorized, "Email is not verified", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, "Email or password is wrong", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		}
		return
	}
	h.audit(c, u.ID, u.Email, "login", nil)

	response.JSON(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userSummary(u),
	}, "login successful", nil)
}

// Logout POST /api/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("logout failed")
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.audit(c, uid, "", "logout", nil)
	c.Status(http.StatusNoContent)
}

// Current GET /api/users/current
func (h *AuthHandler) Current(c *gin.Context) {
	u, ok := c.MustGet(middleware.CtxUserKey).(*entity.User)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}
	response.JSON(c, http.StatusOK, userSummary(u), "current user", nil)
}

// UpdateSubscription PATCH /api/users/subscription
func (h *AuthHandler) UpdateSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdateSubscription(c.Request.Context(), uid, entity.Subscription(req.Subscription))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidTier):
			response.Fail(c, http.StatusBadRequest, "invalid subscription", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "User not found", nil)
		default:
			h.Logger.WithError(err).Error("subscription update failed")
			response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		}
		return
	}
	response.JSON(c, http.StatusOK, userSummary(u), "subscription updated", nil)
}

// UpdateAvatar PATCH /api/users/avatars (multipart, field "avatar")
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	defer func() { _ = f.Close() }()

	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.UpdateAvatar(c.Request.Context(), uid, f, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, application.ErrInvalidImage) {
			response.Fail(c, http.StatusBadRequest, "invalid image", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("avatar update failed")
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

// VerifyToken GET /api/users/verify/:verificationToken
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	token := c.Param("verificationToken")
	u, err := h.Svc.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("verification failed")
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.audit(c, u.ID, u.Email, "verify", nil)
	response.JSON[any](c, http.StatusOK, nil, "Verification successful", nil)
}

// ResendVerify POST /api/users/verify
func (h *AuthHandler) ResendVerify(c *gin.Context) {
	var req resendVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "missing required field email", validation.ToDetails(err))
		return
	}

	err := h.Svc.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "User not found", nil)
		case errors.Is(err, application.ErrAlreadyVerified):
			response.Fail(c, http.StatusBadRequest, "Verification has already been passed", nil)
		default:
			h.Logger.WithError(err).WithField("email", req.Email).Error("resend verification failed")
			response.Fail(c, http.StatusInternalServerError, "failed to send verification email", nil)
		}
		return
	}
	response.JSON[any](c, http.StatusOK, nil, "Verification email sent", nil)
}
