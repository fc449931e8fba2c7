package dashboard

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
)

type DashboardHandlers struct {
	*domain.BaseHandler
}

func NewDashboardHandlers(base *domain.BaseHandler) *DashboardHandlers {
	return &DashboardHandlers{BaseHandler: base}
}

// ShowDashboard loads the visitor's requests and notifications together.
// Either call returning 401 sends the visitor to sign in.
func (h *DashboardHandlers) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	tasks := apiclient.NewResource[models.Task](h.Client(c, apiclient.GroupTasks))
	notifications := apiclient.NewResource[models.Notification](h.Client(c, apiclient.GroupNotifications))

	var (
		taskList []models.Task
		noteList []models.Notification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		taskList, err = tasks.List(gctx, url.Values{"mine": {"true"}})
		return err
	})
	g.Go(func() error {
		var err error
		noteList, err = notifications.List(gctx, nil)
		return err
	})
	err := g.Wait()
	if err != nil {
		h.Logger.Warn("Dashboard data unavailable", zap.Error(err))
	}

	h.RenderPage(c, "Dashboard - Tech Support", "Dashboard", pages.DashboardPage(
		h.CurrentUser(c),
		domain.TaskItems(taskList),
		domain.NotificationItems(noteList),
		h.APINotice(c, err, "dashboard")))
}

func (h *DashboardHandlers) ShowApply(c *gin.Context) {
	h.RenderPage(c, "Join the team - Tech Support", "", pages.ApplicationForm(nil))
}

func (h *DashboardHandlers) SubmitApplication(c *gin.Context) {
	var req models.Application
	if err := c.ShouldBind(&req); err != nil {
		h.RenderFragment(c, http.StatusBadRequest, "Join the team - Tech Support",
			pages.ApplicationForm(pages.ErrorNotice("Tell us why you want to join.")))
		return
	}

	app, err := apiclient.NewResource[models.Application](h.Client(c, apiclient.GroupApplications)).
		Create(c.Request.Context(), req)
	if err != nil {
		h.RenderFragment(c, http.StatusBadGateway, "Join the team - Tech Support",
			pages.ApplicationForm(h.APINotice(c, err, "apply")))
		return
	}

	h.Logger.Info("Application submitted", zap.String("application_id", app.ID))
	h.RenderFragment(c, http.StatusCreated, "Join the team - Tech Support",
		pages.ApplicationForm(pages.SuccessNotice("Thanks! We'll be in touch.")))
}
