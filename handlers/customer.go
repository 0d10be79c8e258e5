package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clubvoice/models"
	"clubvoice/utils"
)

func (hb *HandlerBundle) GetCustomerHandler(c *gin.Context) {
	cust, err := hb.CustomerRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "customer not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (hb *HandlerBundle) ListCustomersHandler(c *gin.Context) {
	clubID := c.Query("club_id")
	if clubID == "" {
		utils.JSONError(c, http.StatusBadRequest, "club_id is required", "")
		return
	}
	customers, err := hb.CustomerRepo.List(c.Request.Context(), clubID, models.CustomerStatus(c.Query("status")))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list customers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "count": len(customers)})
}

// UpdateCustomerHandler edits contact details and funnel status. The
// funnel only moves forward; a regressive status in the payload is
// ignored.
func (hb *HandlerBundle) UpdateCustomerHandler(c *gin.Context) {
	cust, err := hb.CustomerRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "customer not found", err.Error())
		return
	}

	var input struct {
		Name         string                `json:"name"`
		Email        string                `json:"email"`
		Status       models.CustomerStatus `json:"status"`
		InterestedIn string                `json:"interested_in"`
		Notes        string                `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if input.Name != "" {
		cust.Name = input.Name
	}
	if input.Email != "" {
		cust.Email = input.Email
	}
	if input.InterestedIn != "" {
		cust.InterestedIn = input.InterestedIn
	}
	if input.Notes != "" {
		cust.Notes = input.Notes
	}
	if input.Status != "" {
		cust.AdvanceStatus(input.Status)
	}
	cust.UpdatedAt = time.Now().UTC()

	if err := hb.CustomerRepo.Update(c.Request.Context(), cust); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update customer", err.Error())
		return
	}
	c.JSON(http.StatusOK, cust)
}
