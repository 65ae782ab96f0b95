package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybook/internal/service"
)

// UserHandler mantiene dependencias para endpoints del perfil.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// Me maneja GET /me.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.userServ.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe maneja PATCH /me. Solo los campos presentes se actualizan.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		FullName    *string `json:"full_name"`
		PhoneNumber *string `json:"phone_number"`
		Gender      *string `json:"gender"`
		DateOfBirth *string `json:"date_of_birth"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), claims.UserID, service.UpdateProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("update profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UploadAvatar maneja POST /me/avatar (multipart, campo "avatar").
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Warn("avatar open failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar file"})
		return
	}
	defer file.Close()

	user, err := h.userServ.UploadAvatar(c.Request.Context(), claims.UserID, file, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrAvatarStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "avatar storage unavailable"})
		default:
			h.logger.Error("avatar upload failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload avatar"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
