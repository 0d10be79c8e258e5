package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	bookingRepo "clubvoice/database/repository/booking"
	"clubvoice/models"
	"clubvoice/services/booking"
	"clubvoice/services/scheduling"
	"clubvoice/utils"
)

// CreateBookingHandler books a slot through the same lifecycle path the
// voice assistant uses.
func (hb *HandlerBundle) CreateBookingHandler(c *gin.Context) {
	var input struct {
		ClubID       string    `json:"club_id" binding:"required"`
		Resource     string    `json:"resource" binding:"required"`
		CustomerID   string    `json:"customer_id"`
		Start        time.Time `json:"start" binding:"required"`
		End          time.Time `json:"end" binding:"required"`
		ContactName  string    `json:"contact_name"`
		ContactPhone string    `json:"contact_phone"`
		ContactEmail string    `json:"contact_email"`
		Notes        string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := hb.Bookings.Create(c.Request.Context(), booking.CreateRequest{
		ClubID:       input.ClubID,
		Resource:     input.Resource,
		CustomerID:   input.CustomerID,
		Start:        input.Start,
		End:          input.End,
		Source:       models.SourceAPI,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		Notes:        input.Notes,
	})
	if handled := respondSchedulingError(c, err); handled {
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking", err.Error())
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	b, err := hb.Bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

func (hb *HandlerBundle) ListBookingsHandler(c *gin.Context) {
	filter := bookingRepo.ListFilter{
		ClubID:     c.Query("club_id"),
		CustomerID: c.Query("customer_id"),
		Resource:   c.Query("resource"),
		Status:     models.BookingStatus(c.Query("status")),
		Limit:      queryInt64(c, "limit", 50),
		Skip:       queryInt64(c, "skip", 0),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = to
	}

	bookings, err := hb.Bookings.List(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ModifyBookingHandler moves a booking to a new interval. The original
// booking is untouched when the new interval is rejected.
func (hb *HandlerBundle) ModifyBookingHandler(c *gin.Context) {
	var input struct {
		Start time.Time `json:"start" binding:"required"`
		End   time.Time `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := hb.Bookings.Modify(c.Request.Context(), c.Param("id"), input.Start, input.End)
	if handled := respondSchedulingError(c, err); handled {
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to modify booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	b, err := hb.Bookings.Cancel(c.Request.Context(), c.Param("id"), input.Reason)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

func (hb *HandlerBundle) ConfirmBookingHandler(c *gin.Context) {
	b, err := hb.Bookings.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "failed to confirm booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

func (hb *HandlerBundle) CompleteBookingHandler(c *gin.Context) {
	b, err := hb.Bookings.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "failed to complete booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

// CheckAvailabilityHandler is the non-mutating availability probe used
// by dashboards.
func (hb *HandlerBundle) CheckAvailabilityHandler(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid start", err.Error())
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid end", err.Error())
		return
	}
	clubID, resource := c.Query("club_id"), c.Query("resource")
	if clubID == "" || resource == "" {
		utils.JSONError(c, http.StatusBadRequest, "club_id and resource are required", "")
		return
	}

	result, err := hb.Bookings.CheckAvailability(c.Request.Context(), clubID, resource, start, end)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "availability check failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondSchedulingError maps checker rejections to 409/422 with the
// structured details clients act on. Returns true when it responded.
func respondSchedulingError(c *gin.Context, err error) bool {
	if ce, ok := scheduling.IsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":     ce.Error(),
			"conflicts": ce.Conflicts,
		})
		return true
	}
	if ie, ok := scheduling.IsInvalidSlot(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ie.Error()})
		return true
	}
	return false
}

func queryInt64(c *gin.Context, key string, def int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
