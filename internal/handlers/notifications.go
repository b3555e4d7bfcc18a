package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/notifications"
	"github.com/shaygp/boxd/internal/util"
)

// GetNotifications returns the caller's newest notifications
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	list, err := h.notifications.ListFor(ctx, userID, util.QueryInt(c, "limit", notifications.DefaultListLimit))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

// GetUnreadCount returns the badge count
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	unread, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread})
}

// MarkNotificationRead marks one of the caller's notifications read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	n, err := h.notifications.Get(ctx, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	// other users' notifications look the same as missing ones
	if n.RecipientID != userID {
		util.RespondWithAPIError(c, apperrors.NotFound("notification"))
		return
	}
	if err := h.notifications.MarkRead(ctx, n.ID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// MarkAllNotificationsRead marks everything unread right now as read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	marked, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "marked": marked})
}
