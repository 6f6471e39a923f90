package handler

import (
	"net/http"

	"pollwise/internal/services"
	"pollwise/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContestHandler struct {
	service *services.ContestService
}

func NewContestHandler(service *services.ContestService) *ContestHandler {
	return &ContestHandler{service: service}
}

// Announce draws and records the contest winner. Repeat calls conflict on
// the winner row, so the draw can only ever happen once per contest.
func (h *ContestHandler) Announce(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.AnnounceWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	w, err := h.service.Announce(c.Request.Context(), pollID, req.Prize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromWinner(w)))
}

func (h *ContestHandler) GetWinner(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	w, err := h.service.GetWinner(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromWinner(w)))
}
