package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
)

type SettingsHandlers struct {
	*domain.BaseHandler
}

func NewSettingsHandlers(base *domain.BaseHandler) *SettingsHandlers {
	return &SettingsHandlers{BaseHandler: base}
}

func (h *SettingsHandlers) ShowSettings(c *gin.Context) {
	h.RenderPage(c, "Settings - Tech Support", "", pages.Stack(
		pages.Heading("Profile settings"),
		pages.ProfileForm(h.CurrentUser(c), nil)))
}

func (h *SettingsHandlers) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RenderFragment(c, http.StatusBadRequest, "Settings - Tech Support",
			pages.ProfileForm(h.CurrentUser(c), pages.ErrorNotice("Could not read the form.")))
		return
	}

	user, err := h.AuthAPI(c).UpdateProfile(c.Request.Context(), req)
	if err != nil {
		h.RenderFragment(c, http.StatusBadGateway, "Settings - Tech Support",
			pages.ProfileForm(&models.User{Name: req.Name, Phone: req.Phone, Department: req.Department, Bio: req.Bio},
				h.APINotice(c, err, "update-profile")))
		return
	}

	h.Logger.Info("Profile updated", zap.String("user_id", user.ID))
	h.RenderFragment(c, http.StatusOK, "Settings - Tech Support",
		pages.ProfileForm(user, pages.SuccessNotice("Profile updated successfully!")))
}

func (h *SettingsHandlers) ShowAccount(c *gin.Context) {
	user := h.CurrentUser(c)
	var notice *pages.Notice
	if user == nil {
		notice = pages.ErrorNotice("Your profile could not be loaded.")
	}
	h.RenderPage(c, "Account - Tech Support", "", pages.AccountPage(user, notice))
}
