package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	tokens "github.com/techsupport-hub/portal/pkg/auth"
)

// CookieConfig describes the access cookie the portal relays to the browser.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandlers struct {
	*domain.BaseHandler
	cookie CookieConfig
}

func NewAuthHandlers(base *domain.BaseHandler, cookie CookieConfig) *AuthHandlers {
	if cookie.Name == "" {
		cookie.Name = "accessToken"
	}
	return &AuthHandlers{BaseHandler: base, cookie: cookie}
}

func (h *AuthHandlers) ShowLogin(c *gin.Context) {
	var notice *pages.Notice
	switch c.Query("status") {
	case "registered":
		notice = pages.SuccessNotice("Account created. Please sign in.")
	case "reset":
		notice = pages.SuccessNotice("Password updated. Please sign in.")
	}
	h.RenderPage(c, "Sign in - Tech Support", "", pages.LoginForm("", notice))
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Logger.Warn("Invalid login form", zap.Error(err))
		h.RenderFragment(c, http.StatusBadRequest, "Sign in - Tech Support",
			pages.LoginForm(req.Email, pages.ErrorNotice("Email and password are required.")))
		return
	}

	api := h.AuthAPI(c)
	user, err := api.Login(c.Request.Context(), req)
	if err != nil {
		status, notice := http.StatusBadGateway, h.APINotice(c, err, "login")
		if apiclient.IsUnauthorized(err) {
			status, notice = http.StatusUnauthorized, pages.ErrorNotice("Invalid email or password.")
		}
		h.Logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		h.RenderFragment(c, status, "Sign in - Tech Support", pages.LoginForm(req.Email, notice))
		return
	}

	if !h.relayCredential(c, api) {
		h.RenderFragment(c, http.StatusBadGateway, "Sign in - Tech Support",
			pages.LoginForm(req.Email, pages.ErrorNotice("Signed in, but no session was issued. Please try again.")))
		return
	}

	h.Logger.Info("Successful login",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	middleware.Redirect(c, user.LandingPath())
}

func (h *AuthHandlers) ShowSignup(c *gin.Context) {
	h.RenderPage(c, "Create account - Tech Support", "", pages.SignupForm("", "", nil))
}

func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Logger.Warn("Invalid signup form", zap.Error(err))
		h.RenderFragment(c, http.StatusBadRequest, "Create account - Tech Support",
			pages.SignupForm(req.Name, req.Email, pages.ErrorNotice("Please fill in every field. Passwords need at least 8 characters.")))
		return
	}

	api := h.AuthAPI(c)
	user, err := api.Register(c.Request.Context(), req)
	if err != nil {
		h.RenderFragment(c, http.StatusUnprocessableEntity, "Create account - Tech Support",
			pages.SignupForm(req.Name, req.Email, h.APINotice(c, err, "register")))
		return
	}

	// Some deployments sign the user in on registration.
	if user != nil && h.relayCredential(c, api) {
		middleware.Redirect(c, user.LandingPath())
		return
	}
	middleware.Redirect(c, "/login?status=registered")
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.AuthAPI(c).Logout(c.Request.Context()); err != nil {
		h.Logger.Info("API logout failed, clearing local session anyway", zap.Error(err))
	}
	h.setCookie(c, "", -1)
	middleware.Redirect(c, "/login")
}

func (h *AuthHandlers) ShowForgotPassword(c *gin.Context) {
	h.RenderPage(c, "Reset password - Tech Support", "", pages.ForgotPasswordForm(nil))
}

func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RenderFragment(c, http.StatusBadRequest, "Reset password - Tech Support",
			pages.ForgotPasswordForm(pages.ErrorNotice("Please enter a valid email address.")))
		return
	}

	err := h.AuthAPI(c).ForgotPassword(c.Request.Context(), req)
	if apiErr, ok := apiclient.AsAPIError(err); err != nil && !(ok && apiErr.Status == http.StatusNotFound) {
		h.RenderFragment(c, http.StatusBadGateway, "Reset password - Tech Support",
			pages.ForgotPasswordForm(h.APINotice(c, err, "forgot-password")))
		return
	}

	// Unknown addresses get the same answer as known ones.
	h.RenderFragment(c, http.StatusOK, "Reset password - Tech Support",
		pages.ForgotPasswordForm(pages.SuccessNotice("If an account exists for that address, a reset link is on its way.")))
}

func (h *AuthHandlers) ShowResetPassword(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.RenderPage(c, "Reset password - Tech Support", "",
			pages.ForgotPasswordForm(pages.ErrorNotice("That reset link is invalid. Request a new one below.")))
		return
	}
	h.RenderPage(c, "Reset password - Tech Support", "", pages.ResetPasswordForm(token, nil))
}

func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RenderFragment(c, http.StatusBadRequest, "Reset password - Tech Support",
			pages.ResetPasswordForm(req.Token, pages.ErrorNotice("Passwords need at least 8 characters.")))
		return
	}

	if err := h.AuthAPI(c).ResetPassword(c.Request.Context(), req); err != nil {
		h.RenderFragment(c, http.StatusUnprocessableEntity, "Reset password - Tech Support",
			pages.ResetPasswordForm(req.Token, h.APINotice(c, err, "reset-password")))
		return
	}
	middleware.Redirect(c, "/login?status=reset")
}

// relayCredential copies the access cookie the API just issued to the
// browser, so the next navigation passes the route guard.
func (h *AuthHandlers) relayCredential(c *gin.Context, api *apiclient.AuthAPI) bool {
	token, ok := api.Client().Credential()
	if !ok {
		h.Logger.Error("API accepted credentials but issued no access cookie",
			zap.String("cookie", h.cookie.Name))
		return false
	}
	maxAge := 0
	if exp, ok := tokens.ExpiresAt(token); ok {
		maxAge = int(time.Until(exp).Seconds())
		if maxAge <= 0 {
			return false
		}
	}
	h.setCookie(c, token, maxAge)
	return true
}

func (h *AuthHandlers) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
