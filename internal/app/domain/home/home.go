package home

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
)

type HomeHandlers struct {
	*domain.BaseHandler
}

func NewHomeHandlers(base *domain.BaseHandler) *HomeHandlers {
	return &HomeHandlers{BaseHandler: base}
}

func (h *HomeHandlers) ShowHomePage(c *gin.Context) {
	var (
		serviceList []models.Service
		eventList   []models.Event
	)
	// Both lists are optional on the landing page; a failure only leaves
	// its section empty.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		serviceList, err = domain.PublicList(h.BaseHandler, c, h.Content.Services, apiclient.GroupServices, nil)
		return err
	})
	g.Go(func() error {
		var err error
		eventList, err = domain.PublicList(h.BaseHandler, c, h.Content.Events, apiclient.GroupEvents, nil)
		return err
	})

	var notice *pages.Notice
	if err := g.Wait(); err != nil {
		h.Logger.Warn("Home page content unavailable", zap.Error(err))
		notice = pages.ErrorNotice("Some content could not be loaded.")
	}

	h.RenderPage(c, "Tech Support", "Home",
		pages.HomePage(h.CurrentUser(c), domain.ServiceItems(serviceList), domain.EventItems(eventList), notice))
}
