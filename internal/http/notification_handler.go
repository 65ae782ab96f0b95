package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybook/internal/service"
)

// NotificationHandler mantiene dependencias para endpoints de notificaciones.
type NotificationHandler struct {
	logger    *zap.Logger
	notifServ *service.NotificationService
}

func NewNotificationHandler(logger *zap.Logger, notifServ *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		logger:    logger,
		notifServ: notifServ,
	}
}

// List maneja GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	notifications, err := h.notifServ.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadCount maneja GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	count, err := h.notifServ.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("count unread notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead maneja POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.notifServ.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		h.logger.Error("mark notification read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// MarkAllRead maneja POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.notifServ.MarkAllRead(c.Request.Context(), claims.UserID); err != nil {
		h.logger.Error("mark all notifications read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
