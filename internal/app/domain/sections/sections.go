package sections

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/pages"
)

// SectionHandlers render the list pages of one Area. Access was already
// decided by the route guard; any 401 from the API here is on a protected
// page and ends at the login page.
type SectionHandlers struct {
	*domain.BaseHandler
	area Area
}

func NewSectionHandlers(base *domain.BaseHandler, area Area) *SectionHandlers {
	return &SectionHandlers{BaseHandler: base, area: area}
}

func (h *SectionHandlers) ShowOverview(c *gin.Context) {
	h.render(c, h.area.Overview, "Dashboard")
}

func (h *SectionHandlers) ShowSection(c *gin.Context) {
	name := c.Param("section")
	h.render(c, name, "")
}

func (h *SectionHandlers) render(c *gin.Context, name, activeNav string) {
	section, ok := h.area.Sections[name]
	if !ok {
		h.Render(c, http.StatusNotFound, pages.LayoutPage(h.NewLayoutData(c, "Not found - Tech Support", "",
			pages.SectionPage(pages.Section{
				ID:     "not-found",
				Title:  "Not found",
				Notice: pages.ErrorNotice("There is no such page in " + h.area.Name + "."),
			}))))
		return
	}
	items, err := section.Load(c.Request.Context(), h.Client(c, section.Group))
	h.RenderPage(c, section.Title+" - Tech Support", activeNav, pages.SectionPage(pages.Section{
		ID:     name,
		Title:  section.Title,
		Items:  items,
		Empty:  section.Empty,
		Notice: h.APINotice(c, err, h.area.Name+"-"+name),
	}))
}
