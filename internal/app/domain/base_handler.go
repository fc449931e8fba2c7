package domain

import (
	"errors"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/cache"
	"github.com/techsupport-hub/portal/internal/pkg/observability/metrics"
)

const unavailableMessage = "The service is unavailable right now. Please try again in a moment."

type BaseHandler struct {
	Logger  *zap.Logger
	Clients *apiclient.Factory
	// Probes coalesces concurrent session checks for the same credential.
	Probes *singleflight.Group
	// Content caches public lists for anonymous visitors.
	Content *cache.CacheManager
}

func NewBaseHandler(logger *zap.Logger, clients *apiclient.Factory, content *cache.CacheManager) *BaseHandler {
	if content == nil {
		content = cache.NewCacheManager(0, logger)
	}
	return &BaseHandler{Logger: logger, Clients: clients, Probes: &singleflight.Group{}, Content: content}
}

// Client returns an API client bound to the current visitor.
func (h *BaseHandler) Client(c *gin.Context, group apiclient.Group) *apiclient.Client {
	env, ok := middleware.GetEnvFromContext(c)
	if !ok {
		h.Logger.Warn("No API environment bound to request, using anonymous client",
			zap.String("path", c.Request.URL.Path))
	}
	return h.Clients.Client(group, env)
}

func (h *BaseHandler) AuthAPI(c *gin.Context) *apiclient.AuthAPI {
	return apiclient.NewAuthAPI(h.Client(c, apiclient.GroupAuth), h.Probes)
}

func (h *BaseHandler) NewLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	nav := navFor(c)
	if activeNav == "" {
		// Default to the entry for the page being shown.
		for _, item := range nav.Items {
			if item.URL == c.Request.URL.Path {
				activeNav = item.Name
				break
			}
		}
	}
	return models.LayoutTempl{
		Title:     title,
		Content:   content,
		Nav:       nav,
		ActiveNav: activeNav,
		User:      middleware.GetUserFromContext(c),
	}
}

func navFor(c *gin.Context) models.Navigation {
	claims := middleware.GetClaimsFromContext(c)
	if claims == nil {
		return models.PublicNav
	}
	switch claims.AccessRole() {
	case access.RoleAdmin:
		return models.AdminNav
	case access.RoleMember:
		return models.MemberNav
	case access.RoleStudent:
		return models.StudentNav
	default:
		return models.PublicNav
	}
}

// CurrentUser returns the cached profile, re-fetching it when a verified
// session has none cached.
func (h *BaseHandler) CurrentUser(c *gin.Context) *models.User {
	if user := middleware.GetUserFromContext(c); user != nil {
		return user
	}
	if middleware.GetClaimsFromContext(c) == nil {
		return nil
	}
	user, err := h.AuthAPI(c).Refresh(c.Request.Context())
	if err != nil {
		h.Logger.Debug("Profile refresh failed", zap.Error(err))
		return nil
	}
	return user
}

// Navigated finishes the request with the navigation the API interceptor
// decided on, if it decided on one.
func (h *BaseHandler) Navigated(c *gin.Context) bool {
	browser := middleware.GetBrowserFromContext(c)
	if browser == nil {
		return false
	}
	target, ok := browser.Navigated()
	if !ok {
		return false
	}
	middleware.Redirect(c, target)
	return true
}

func (h *BaseHandler) Render(c *gin.Context, status int, component templ.Component) {
	if h.Navigated(c) {
		return
	}
	start := time.Now()
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("Failed to render component", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	metrics.Get().TemplateRenderDuration.Record(c.Request.Context(), time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("route", c.FullPath())))
}

// RenderPage renders the full layout; hx-boost swaps the body on the client.
func (h *BaseHandler) RenderPage(c *gin.Context, title, activeNav string, content templ.Component) {
	h.Render(c, http.StatusOK, pages.LayoutPage(h.NewLayoutData(c, title, activeNav, content)))
}

// RenderFragment answers an htmx form post with just the swapped fragment.
// Plain form posts get the fragment inside the layout with status.
func (h *BaseHandler) RenderFragment(c *gin.Context, status int, title string, fragment templ.Component) {
	if c.GetHeader("HX-Request") == "true" {
		// htmx only swaps 2xx responses.
		h.Render(c, http.StatusOK, fragment)
		return
	}
	h.Render(c, status, pages.LayoutPage(h.NewLayoutData(c, title, "", fragment)))
}

// APINotice turns a failed call into the banner shown next to the action.
// By the time it runs, a 401 has already been handled by the interceptor.
func (h *BaseHandler) APINotice(c *gin.Context, err error, action string) *pages.Notice {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrPasswordsDiffer) {
		return pages.ErrorNotice("Passwords do not match.")
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		h.Logger.Info("API call failed",
			zap.String("action", action),
			zap.Int("status", apiErr.Status),
			zap.String("endpoint", apiErr.Endpoint))
		return pages.ErrorNotice(apiErr.UserMessage())
	}
	h.Logger.Error("API call failed", zap.String("action", action), zap.Error(err))
	return pages.ErrorNotice(unavailableMessage)
}

func (h *BaseHandler) ShowNotFound(c *gin.Context) {
	h.Logger.Info("404 - Page not found",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("ip", c.ClientIP()),
	)
	h.Render(c, http.StatusNotFound, pages.LayoutPage(h.NewLayoutData(c, "Page Not Found - Tech Support", "",
		pages.SectionPage(pages.Section{
			ID:     "not-found",
			Title:  "Page not found",
			Notice: pages.ErrorNotice("We couldn't find " + c.Request.URL.Path + "."),
		}))))
}
