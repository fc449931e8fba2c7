package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/domain/auth"
	"github.com/techsupport-hub/portal/internal/app/domain/content"
	"github.com/techsupport-hub/portal/internal/app/domain/dashboard"
	"github.com/techsupport-hub/portal/internal/app/domain/home"
	"github.com/techsupport-hub/portal/internal/app/domain/sections"
	"github.com/techsupport-hub/portal/internal/app/domain/settings"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/cache"
	"github.com/techsupport-hub/portal/internal/pkg/config"
	"github.com/techsupport-hub/portal/internal/pkg/observability/metrics"
)

type AppHandlers struct {
	Home      *home.HomeHandlers
	Auth      *auth.AuthHandlers
	DevTokens *auth.AuthTokenHandler
	Content   *content.ContentHandlers
	Dashboard *dashboard.DashboardHandlers
	Settings  *settings.SettingsHandlers
	Admin     *sections.SectionHandlers
	Tasks     *sections.TaskHandlers
	Members   *sections.SectionHandlers
	Student   *sections.SectionHandlers
	Base      *domain.BaseHandler
}

// Setup registers every page. Access control is not done here: the route
// guard installed on the engine classifies each path before it is routed.
func Setup(r *gin.Engine, clients *apiclient.Factory, cfg *config.Config, log *zap.Logger) {
	setupRouter(r, setupDependencies(clients, cfg, log), log)
}

func setupDependencies(clients *apiclient.Factory, cfg *config.Config, log *zap.Logger) *AppHandlers {
	authCfg := cfg.Auth
	lists := cache.NewCacheManager(cfg.API.ContentCacheTTL, log)
	if _, err := lists.RegisterMetrics(metrics.Meter()); err != nil {
		log.Warn("Content cache metrics unavailable", zap.Error(err))
	}
	base := domain.NewBaseHandler(log, clients, lists)
	cookie := auth.CookieConfig{Name: authCfg.CookieName, Secure: authCfg.CookieSecure}

	handlers := &AppHandlers{
		Home:      home.NewHomeHandlers(base),
		Auth:      auth.NewAuthHandlers(base, cookie),
		Content:   content.NewContentHandlers(base),
		Dashboard: dashboard.NewDashboardHandlers(base),
		Settings:  settings.NewSettingsHandlers(base),
		Admin:     sections.NewSectionHandlers(base, sections.AdminArea),
		Tasks:     sections.NewTaskHandlers(base),
		Members:   sections.NewSectionHandlers(base, sections.MemberArea),
		Student:   sections.NewSectionHandlers(base, sections.StudentArea),
		Base:      base,
	}
	if authCfg.DevTokens {
		log.Warn("DEV_TOKENS is enabled: /auth/token mints access tokens. Do not run this in production.")
		handlers.DevTokens = auth.NewAuthTokenHandler(log, authCfg.JWTSecret, cookie)
	}
	return handlers
}

func setupRouter(r *gin.Engine, h *AppHandlers, log *zap.Logger) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	{
		public.GET("/", h.Home.ShowHomePage)
		public.GET("/services", h.Content.ShowServices)
		public.GET("/blogs", h.Content.ShowBlogs)
		public.POST("/blogs", h.Content.CreateBlog)
		public.GET("/guides", h.Content.ShowGuides)
		public.GET("/events", h.Content.ShowEvents)
		public.GET("/members/memberList", h.Content.ShowMemberList)
	}

	// Guest pages; the guard sends signed-in visitors away from /login.
	authGroup := r.Group("/")
	{
		authGroup.GET("/login", h.Auth.ShowLogin)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/signup", h.Auth.ShowSignup)
		authGroup.POST("/signup", h.Auth.Register)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/forgot-password", h.Auth.ShowForgotPassword)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.GET("/reset-password", h.Auth.ShowResetPassword)
		authGroup.POST("/reset-password", h.Auth.ResetPassword)
	}

	if h.DevTokens != nil {
		dev := r.Group("/auth")
		{
			dev.POST("/token", h.DevTokens.GenerateToken)
			dev.GET("/verify", h.DevTokens.VerifyToken)
		}
	}

	account := r.Group("/")
	{
		account.GET("/dashboard", h.Dashboard.ShowDashboard)
		account.GET("/apply", h.Dashboard.ShowApply)
		account.POST("/apply", h.Dashboard.SubmitApplication)
		account.GET("/settings", h.Settings.ShowSettings)
		account.POST("/settings/profile", h.Settings.UpdateProfile)
		account.GET("/account", h.Settings.ShowAccount)
	}

	admin := r.Group("/admin")
	{
		admin.GET("", h.Admin.ShowOverview)
		admin.GET("/tasks", h.Tasks.ShowTaskBoard)
		admin.POST("/tasks/:id/assign", h.Tasks.AssignTask)
		admin.GET("/:section", h.Admin.ShowSection)
	}

	members := r.Group("/members")
	{
		members.GET("", h.Members.ShowOverview)
		members.GET("/:section", h.Members.ShowSection)
	}

	student := r.Group("/student")
	{
		student.GET("", h.Student.ShowOverview)
		student.GET("/:section", h.Student.ShowSection)
	}

	// 404 handler - must be last
	r.NoRoute(h.Base.ShowNotFound)

	log.Info("Routes registered", zap.Int("count", len(r.Routes())))
}
