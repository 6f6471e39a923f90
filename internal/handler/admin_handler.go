package handler

import (
	"net/http"
	"strconv"

	"pollwise/internal/domain/poll"
	"pollwise/internal/repository"
	"pollwise/internal/scheduler"
	"pollwise/internal/services"
	"pollwise/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler covers the management surface: poll moderation, settings,
// export/import, and the scheduler job log.
type AdminHandler struct {
	polls    *services.PollService
	settings *services.SettingsService
	export   *services.ExportService
	jobLog   *scheduler.JobLog
}

func NewAdminHandler(polls *services.PollService, settings *services.SettingsService, export *services.ExportService, jobLog *scheduler.JobLog) *AdminHandler {
	return &AdminHandler{polls: polls, settings: settings, export: export, jobLog: jobLog}
}

// ListPolls is the moderation listing: any status, soft-deleted included on
// request.
func (h *AdminHandler) ListPolls(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	includeDeleted, _ := strconv.ParseBool(c.Query("include_deleted"))

	filter := repository.PollFilter{
		Status:         poll.Status(c.Query("status")),
		Kind:           poll.Kind(c.Query("kind")),
		Search:         c.Query("q"),
		IncludeDeleted: includeDeleted,
	}
	items, total, err := h.polls.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListPollsResponse{
		Polls: httpdto.FromPollSlice(items),
		Total: total,
	}))
}

func (h *AdminHandler) GetPoll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	p, err := h.polls.GetAny(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPoll(p)))
}

func (h *AdminHandler) UpdatePoll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.UpdatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, err := h.polls.Update(c.Request.Context(), id, services.UpdatePollInput{
		Question:      req.Question,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		ImageURL:      req.ImageURL,
		IsContest:     req.IsContest,
		ContestPrize:  req.ContestPrize,
		ContestEndsAt: req.ContestEndsAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPoll(p)))
}

// DeletePoll soft-deletes; the row stays reachable via GetPoll for audit.
func (h *AdminHandler) DeletePoll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	if err := h.polls.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": true}))
}

func (h *AdminHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.polls.SetStatus(c.Request.Context(), id, poll.Status(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": req.Status}))
}

func (h *AdminHandler) ApprovePoll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	if err := h.polls.Approve(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": string(poll.StatusActive)}))
}

func (h *AdminHandler) MakeWeekly(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	if err := h.polls.MakeWeekly(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"weekly": true}))
}

func (h *AdminHandler) BulkAction(c *gin.Context) {
	var req httpdto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, idStr := range req.IDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
			return
		}
		ids = append(ids, id)
	}

	applied, err := h.polls.BulkAction(c.Request.Context(), req.Action, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.BulkActionResponse{Applied: applied}))
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	cfg, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromSettings(cfg)))
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req httpdto.SettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	cfg, err := h.settings.Update(c.Request.Context(), req.ToSettings())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromSettings(cfg)))
}

// Export streams the requested data in json, csv, or xml. Scope defaults to
// everything.
func (h *AdminHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	scope := services.ExportScope{Polls: true, Votes: true, Settings: true}
	if v := c.Query("polls"); v != "" {
		scope.Polls, _ = strconv.ParseBool(v)
	}
	if v := c.Query("votes"); v != "" {
		scope.Votes, _ = strconv.ParseBool(v)
	}
	if v := c.Query("settings"); v != "" {
		scope.Settings, _ = strconv.ParseBool(v)
	}

	data, contentType, err := h.export.Export(c.Request.Context(), format, scope)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=pollwise-export."+format)
	c.Data(http.StatusOK, contentType, data)
}

// Import applies an exported bundle from the raw request body. Mode and
// format come from query parameters; backup=true snapshots everything to
// JSON before mutating.
func (h *AdminHandler) Import(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	mode := c.DefaultQuery("mode", "merge")
	backup, _ := strconv.ParseBool(c.DefaultQuery("backup", "true"))

	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	summary, err := h.export.Import(c.Request.Context(), format, data, mode, backup)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(summary))
}

// JobLog returns the rolling log of scheduler runs, most recent first.
func (h *AdminHandler) JobLog(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.jobLog.Entries()))
}
