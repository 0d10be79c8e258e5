package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notificationRepo "clubvoice/database/repository/notification"
	"clubvoice/models"
	"clubvoice/utils"
)

func (hb *HandlerBundle) GetNotificationHandler(c *gin.Context) {
	n, err := hb.Notifier.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "notification not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, n)
}

func (hb *HandlerBundle) ListNotificationsHandler(c *gin.Context) {
	filter := notificationRepo.ListFilter{
		ClubID: c.Query("club_id"),
		Type:   models.NotificationType(c.Query("type")),
		Status: models.NotificationStatus(c.Query("status")),
		Limit:  queryInt64(c, "limit", 50),
		Skip:   queryInt64(c, "skip", 0),
	}
	notifications, err := hb.Notifier.List(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// RetryNotificationHandler re-queues a failed notification with a fresh
// attempt budget.
func (hb *HandlerBundle) RetryNotificationHandler(c *gin.Context) {
	n, err := hb.Notifier.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "failed to retry notification", err.Error())
		return
	}
	c.JSON(http.StatusOK, n)
}

func (hb *HandlerBundle) CancelNotificationHandler(c *gin.Context) {
	n, err := hb.Notifier.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "failed to cancel notification", err.Error())
		return
	}
	c.JSON(http.StatusOK, n)
}
