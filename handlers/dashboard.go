package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clubvoice/utils"
)

// DashboardHandler aggregates per-club counters for the admin view.
func (hb *HandlerBundle) DashboardHandler(c *gin.Context) {
	clubID := c.Query("club_id")
	if clubID == "" {
		utils.JSONError(c, http.StatusBadRequest, "club_id is required", "")
		return
	}
	ctx := c.Request.Context()

	bookings, err := hb.BookingRepo.CountByStatus(ctx, clubID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to count bookings", err.Error())
		return
	}
	conversations, err := hb.Sessions.CountByState(ctx, clubID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to count conversations", err.Error())
		return
	}
	notifications, err := hb.Notifier.CountByStatus(ctx, clubID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to count notifications", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"club_id":       clubID,
		"bookings":      bookings,
		"conversations": conversations,
		"notifications": notifications,
	})
}
