package handler

import (
	"pollwise/internal/domain/user"
	"pollwise/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Poll    *PollHandler
	Vote    *VoteHandler
	Share   *ShareHandler
	Contest *ContestHandler
	Upload  *UploadHandler
	Role    *RoleHandler
	Admin   *AdminHandler
}

// Middlewares carries the request-path middlewares the routes depend on.
// The rate limiters may be nil when Redis is not configured.
type Middlewares struct {
	Auth          gin.HandlerFunc
	OptionalAuth  gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
	VoteRateLimit gin.HandlerFunc
}

// RegisterRoutes lays out the full API surface under /api/v1.
func RegisterRoutes(r *gin.Engine, h Handlers, m Middlewares) {
	v1 := r.Group("/api/v1")

	// Auth endpoints, rate limited per client IP.
	auth := v1.Group("/auth")
	if m.AuthRateLimit != nil {
		auth.Use(m.AuthRateLimit)
	}
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// Public read surface. OptionalAuth lets logged-in voters be identified
	// without requiring a token.
	public := v1.Group("")
	public.Use(m.OptionalAuth)
	public.GET("/polls", h.Poll.List)
	public.GET("/polls/latest", h.Poll.GetLatest)
	public.GET("/polls/:id", h.Poll.Get)
	public.GET("/polls/:id/results", h.Vote.Results)
	public.GET("/polls/:id/voted", h.Vote.HasVoted)
	public.GET("/polls/:id/winner", h.Contest.GetWinner)
	public.GET("/popup", h.Poll.GetPopup)

	cast := public.Group("")
	if m.VoteRateLimit != nil {
		cast.Use(m.VoteRateLimit)
	}
	cast.POST("/polls/:id/votes", h.Vote.Cast)
	public.POST("/polls/:id/shares", h.Share.Record)

	// Authenticated user surface.
	authed := v1.Group("")
	authed.Use(m.Auth)
	authed.GET("/me", h.User.Me)
	authed.POST("/polls", h.Poll.Create)
	authed.POST("/polls/:id/dismiss", h.Poll.Dismiss)
	authed.POST("/uploads/presign", h.Upload.Presign)
	authed.POST("/invitations/:token/accept", h.Role.Accept)

	// Moderation surface: poll managers and admins.
	manage := v1.Group("/admin", m.Auth, middleware.RequireCapability(user.CapManagePolls))
	manage.GET("/polls", h.Admin.ListPolls)
	manage.GET("/polls/:id", h.Admin.GetPoll)
	manage.PATCH("/polls/:id", h.Admin.UpdatePoll)
	manage.DELETE("/polls/:id", h.Admin.DeletePoll)
	manage.POST("/polls/:id/status", h.Admin.SetStatus)
	manage.POST("/polls/bulk", h.Admin.BulkAction)

	results := v1.Group("/admin", m.Auth, middleware.RequireCapability(user.CapViewResults))
	results.GET("/polls/:id/results", h.Vote.Results)
	results.GET("/polls/:id/shares", h.Share.Counts)

	// Admin-only content decisions.
	approve := v1.Group("/admin", m.Auth, middleware.RequireCapability(user.CapApproveContent))
	approve.POST("/polls/:id/approve", h.Admin.ApprovePoll)
	approve.POST("/polls/:id/weekly", h.Admin.MakeWeekly)
	approve.POST("/polls/:id/announce", h.Contest.Announce)

	settings := v1.Group("/admin", m.Auth, middleware.RequireCapability(user.CapManageSettings))
	settings.GET("/settings", h.Admin.GetSettings)
	settings.PUT("/settings", h.Admin.UpdateSettings)
	settings.GET("/jobs", h.Admin.JobLog)

	roles := v1.Group("/admin", m.Auth, middleware.RequireCapability(user.CapManageRoles))
	roles.POST("/invitations", h.Role.Invite)
	roles.POST("/roles/:user_id/revoke", h.Role.Revoke)

	export := v1.Group("/admin", m.Auth, middleware.RequireCapability(user.CapExportData))
	export.GET("/export", h.Admin.Export)
	export.POST("/import", h.Admin.Import)
}
