package handler

import (
	"net/http"
	"strconv"

	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/user"
	"pollwise/internal/repository"
	"pollwise/internal/services"
	"pollwise/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PollHandler struct {
	service *services.PollService
}

func NewPollHandler(service *services.PollService) *PollHandler {
	return &PollHandler{service: service}
}

// Create submits a poll. User submissions land in pending until approved;
// callers with the manage-polls capability get theirs active immediately.
func (h *PollHandler) Create(c *gin.Context) {
	var req httpdto.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ownerID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	status := poll.StatusPending
	if role, ok := services.RoleFromContext(c.Request.Context()); ok && canManagePolls(role) {
		status = poll.StatusActive
	}

	p, err := h.service.Create(c.Request.Context(), services.CreatePollInput{
		OwnerID:       ownerID,
		Question:      req.Question,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		ImageURL:      req.ImageURL,
		IsContest:     req.IsContest,
		ContestPrize:  req.ContestPrize,
		ContestEndsAt: req.ContestEndsAt,
		Status:        status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromPoll(p)))
}

func (h *PollHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPoll(p)))
}

// GetLatest returns the poll the widget should display: the weekly poll when
// one is active, otherwise the newest active poll.
func (h *PollHandler) GetLatest(c *gin.Context) {
	p, err := h.service.GetLatest(c.Request.Context(), poll.Kind(c.Query("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPoll(p)))
}

// GetPopup returns the poll the popup should show, or 404 when the caller
// already dismissed it.
func (h *PollHandler) GetPopup(c *gin.Context) {
	userID, _ := services.UserIDFromContext(c.Request.Context())

	p, err := h.service.GetPopupPoll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPoll(p)))
}

func (h *PollHandler) Dismiss(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.DismissPopup(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"dismissed": true}))
}

// List is the public listing: active polls only.
func (h *PollHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	filter := repository.PollFilter{
		Status: poll.StatusActive,
		Kind:   poll.Kind(c.Query("kind")),
		Search: c.Query("q"),
	}
	items, total, err := h.service.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListPollsResponse{
		Polls: httpdto.FromPollSlice(items),
		Total: total,
	}))
}

func canManagePolls(role string) bool {
	return user.HasCapability(role, user.CapManagePolls)
}
