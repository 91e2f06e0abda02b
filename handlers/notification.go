// File: handlers/notification.go
package handlers

import (
	"strconv"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/middleware"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/notification"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the per-user notification feed.
type NotificationHandler struct {
	Svc notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Svc: svc}
}

// RecentHandler handles GET /api/notifications?limit=.
func (h *NotificationHandler) RecentHandler(c *gin.Context) {
	auth := middleware.AuthFrom(c)

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if limit <= 0 || limit > utils.NotifyCacheLimit {
		limit = utils.NotifyCacheLimit
	}

	items, err := h.Svc.Recent(c.Request.Context(), auth.UserID, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Notifications", items)
}
