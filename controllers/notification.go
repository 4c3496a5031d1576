package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dataset-review-api/config"
	"dataset-review-api/services"
)

// GetNotifications returns the caller's in-app review notifications
func GetNotifications(c *gin.Context) {
	actor := actorFromContext(c)

	notificationService := services.NewNotificationService(config.DB)
	notifications, err := notificationService.ListForReviewer(actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total_count":   len(notifications),
	})
}

// MarkNotificationRead marks one of the caller's notifications as read
func MarkNotificationRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	actor := actorFromContext(c)

	notificationService := services.NewNotificationService(config.DB)
	if err := notificationService.MarkRead(actor.UserID, notificationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
