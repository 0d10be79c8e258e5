package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clubvoice/models"
	"clubvoice/utils"
)

func (hb *HandlerBundle) GetConversationHandler(c *gin.Context) {
	conv, err := hb.Sessions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "conversation not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (hb *HandlerBundle) ListConversationsHandler(c *gin.Context) {
	clubID := c.Query("club_id")
	if clubID == "" {
		utils.JSONError(c, http.StatusBadRequest, "club_id is required", "")
		return
	}
	conversations, err := hb.Sessions.List(c.Request.Context(), clubID, models.ConversationState(c.Query("state")))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list conversations", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations, "count": len(conversations)})
}
