package handler

import (
	"net/http"

	"pollwise/internal/domain/share"
	"pollwise/internal/services"
	"pollwise/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShareHandler struct {
	service *services.ShareService
}

func NewShareHandler(service *services.ShareService) *ShareHandler {
	return &ShareHandler{service: service}
}

func (h *ShareHandler) Record(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.RecordShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	_, err = h.service.Record(c.Request.Context(), services.RecordShareInput{
		PollID:    pollID,
		VoterID:   voterFromContext(c),
		Platform:  share.Platform(req.Platform),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(gin.H{"recorded": true}))
}

// Counts is the share breakdown per platform, for the results dashboard.
func (h *ShareHandler) Counts(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	counts, err := h.service.CountByPlatform(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromShareCounts(pollID.String(), counts)))
}
