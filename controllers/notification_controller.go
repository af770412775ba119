package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmenendez/agora/middleware"
	"github.com/lmenendez/agora/notify"
	"github.com/lmenendez/agora/utils"
)

// NotificationController serves a user's durable notifications.
type NotificationController struct {
	store *notify.Store
}

// NewNotificationController creates a new NotificationController instance.
func NewNotificationController(store *notify.Store) *NotificationController {
	return &NotificationController{store: store}
}

// ListNotifications returns the user's notifications newest first. Opening
// the list marks everything viewed, so the pending badge drops to zero.
func (n *NotificationController) ListNotifications(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := n.store.MarkAllViewed(ctx.Request.Context(), userID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to mark notifications viewed")
		return
	}

	notifications, err := n.store.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list notifications")
		return
	}
	utils.Success(ctx, gin.H{"notifications": notifications})
}

// PendingCount returns how many unread notifications the user has.
func (n *NotificationController) PendingCount(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	count, err := n.store.CountPending(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to count notifications")
		return
	}
	utils.Success(ctx, gin.H{"pending": count})
}

// MarkViewed flags every notification of the user as read.
func (n *NotificationController) MarkViewed(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := n.store.MarkAllViewed(ctx.Request.Context(), userID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to mark notifications viewed")
		return
	}
	utils.Success(ctx, gin.H{"viewed": true})
}
