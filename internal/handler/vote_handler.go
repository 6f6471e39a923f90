package handler

import (
	"net/http"

	"pollwise/internal/domain/vote"
	"pollwise/internal/services"
	"pollwise/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	service *services.VoteService
}

func NewVoteHandler(service *services.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Cast records a vote. Anonymous voters are allowed on regular polls and
// keyed by client IP; contest polls require a logged-in voter.
func (h *VoteHandler) Cast(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	v, err := h.service.Cast(c.Request.Context(), services.CastInput{
		PollID:    pollID,
		VoterID:   voterFromContext(c),
		Option:    vote.Option(req.Option),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromVote(v)))
}

func (h *VoteHandler) HasVoted(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	voted, err := h.service.HasVoted(c.Request.Context(), pollID, voterFromContext(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.HasVotedResponse{Voted: voted}))
}

func (h *VoteHandler) Results(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	r, err := h.service.Results(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromResults(pollID.String(), r)))
}

func voterFromContext(c *gin.Context) uuid.NullUUID {
	if userID, ok := services.UserIDFromContext(c.Request.Context()); ok {
		return uuid.NullUUID{UUID: userID, Valid: true}
	}
	return uuid.NullUUID{}
}
