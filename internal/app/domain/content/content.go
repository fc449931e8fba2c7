package content

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
)

// ContentHandlers serve the public pages. Reads here never send the
// visitor to the login page; a rejected read just leaves the list empty.
type ContentHandlers struct {
	*domain.BaseHandler
}

func NewContentHandlers(base *domain.BaseHandler) *ContentHandlers {
	return &ContentHandlers{BaseHandler: base}
}

func (h *ContentHandlers) ShowServices(c *gin.Context) {
	services, err := domain.PublicList(h.BaseHandler, c, h.Content.Services, apiclient.GroupServices, nil)
	h.RenderPage(c, "Services - Tech Support", "Services", pages.SectionPage(pages.Section{
		ID:     "services",
		Title:  "Services",
		Items:  domain.ServiceItems(services),
		Notice: h.APINotice(c, err, "list-services"),
	}))
}

func (h *ContentHandlers) ShowBlogs(c *gin.Context) {
	blogs, err := domain.PublicList(h.BaseHandler, c, h.Content.Blogs, apiclient.GroupBlogs, nil)
	list := pages.SectionPage(pages.Section{
		ID:     "blogs",
		Title:  "Blog",
		Items:  domain.BlogItems(blogs),
		Empty:  "No posts yet.",
		Notice: h.APINotice(c, err, "list-blogs"),
	})
	if middleware.GetClaimsFromContext(c) == nil {
		h.RenderPage(c, "Blog - Tech Support", "Blogs", list)
		return
	}
	h.RenderPage(c, "Blog - Tech Support", "Blogs", pages.Stack(list, pages.BlogForm(nil)))
}

// CreateBlog publishes a post. Without a session the API answers 401 and
// the visitor is sent to sign in.
func (h *ContentHandlers) CreateBlog(c *gin.Context) {
	var req models.NewBlog
	if err := c.ShouldBind(&req); err != nil {
		h.RenderFragment(c, http.StatusBadRequest, "Blog - Tech Support",
			pages.BlogForm(pages.ErrorNotice("A post needs a title and a body.")))
		return
	}

	blog, err := apiclient.NewResource[models.Blog](h.Client(c, apiclient.GroupBlogs)).
		Create(c.Request.Context(), req)
	if err != nil {
		h.RenderFragment(c, http.StatusBadGateway, "Blog - Tech Support",
			pages.BlogForm(h.APINotice(c, err, "create-blog")))
		return
	}

	h.Content.Blogs.Clear()
	h.Logger.Info("Blog post created", zap.String("blog_id", blog.ID))
	middleware.Redirect(c, "/blogs")
}

func (h *ContentHandlers) ShowGuides(c *gin.Context) {
	query := url.Values{}
	if category := c.Query("category"); category != "" {
		query.Set("category", category)
	}
	guides, err := domain.PublicList(h.BaseHandler, c, h.Content.Guides, apiclient.GroupGuides, query)
	h.RenderPage(c, "Guides - Tech Support", "Guides", pages.SectionPage(pages.Section{
		ID:     "guides",
		Title:  "Guides",
		Items:  domain.GuideItems(guides),
		Notice: h.APINotice(c, err, "list-guides"),
	}))
}

func (h *ContentHandlers) ShowEvents(c *gin.Context) {
	events, err := domain.PublicList(h.BaseHandler, c, h.Content.Events, apiclient.GroupEvents, nil)
	h.RenderPage(c, "Events - Tech Support", "Events", pages.SectionPage(pages.Section{
		ID:     "events",
		Title:  "Events",
		Items:  domain.EventItems(events),
		Empty:  "No events scheduled.",
		Notice: h.APINotice(c, err, "list-events"),
	}))
}

// ShowMemberList is the public team directory under the otherwise
// member-only /members area.
func (h *ContentHandlers) ShowMemberList(c *gin.Context) {
	members, err := domain.PublicList(h.BaseHandler, c, h.Content.Members, apiclient.GroupMembers, nil)
	h.RenderPage(c, "Our team - Tech Support", "Members", pages.SectionPage(pages.Section{
		ID:     "member-list",
		Title:  "Our team",
		Items:  domain.UserItems(members),
		Notice: h.APINotice(c, err, "list-members"),
	}))
}
