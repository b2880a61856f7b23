package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodshare-backend/internal/model"
)

// GetNotifications handles GET /api/notifications, returning the caller's
// feed newest first.
func (h *Handler) GetNotifications(c *gin.Context) {
	recipientID, ok := callerID(c)
	if !ok {
		return
	}

	var notifications []model.Notification
	err := h.store.DB().WithContext(c.Request.Context()).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead handles POST /api/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	recipientID, ok := callerID(c)
	if !ok {
		return
	}

	var notification model.Notification
	err := h.store.DB().WithContext(c.Request.Context()).
		First(&notification, "id = ? AND recipient_id = ?", c.Param("id"), recipientID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	notification.Read = true
	if err := h.store.DB().WithContext(c.Request.Context()).Save(&notification).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notification)
}
