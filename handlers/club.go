package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clubvoice/models"
	"clubvoice/utils"
)

func (hb *HandlerBundle) CreateClubHandler(c *gin.Context) {
	var club models.Club
	if err := c.ShouldBindJSON(&club); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := club.Validate(); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid club", err.Error())
		return
	}

	now := time.Now().UTC()
	club.ID = uuid.New().String()
	club.Active = true
	club.CreatedAt = now
	club.UpdatedAt = now
	if err := hb.ClubRepo.Create(c.Request.Context(), &club); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create club", err.Error())
		return
	}
	c.JSON(http.StatusCreated, club)
}

func (hb *HandlerBundle) GetClubHandler(c *gin.Context) {
	club, err := hb.ClubRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "club not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, club)
}

func (hb *HandlerBundle) ListClubsHandler(c *gin.Context) {
	clubs, err := hb.ClubRepo.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list clubs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"clubs": clubs, "count": len(clubs)})
}

func (hb *HandlerBundle) UpdateClubHandler(c *gin.Context) {
	existing, err := hb.ClubRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "club not found", err.Error())
		return
	}

	var club models.Club
	if err := c.ShouldBindJSON(&club); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	club.ID = existing.ID
	club.CreatedAt = existing.CreatedAt
	club.UpdatedAt = time.Now().UTC()
	if err := club.Validate(); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid club", err.Error())
		return
	}
	if err := hb.ClubRepo.Update(c.Request.Context(), &club); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update club", err.Error())
		return
	}
	c.JSON(http.StatusOK, club)
}
