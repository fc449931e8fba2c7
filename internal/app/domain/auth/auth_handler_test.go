package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techsupport-hub/portal/internal/app/domain/domaintest"
	"github.com/techsupport-hub/portal/internal/pkg/access"
	tokens "github.com/techsupport-hub/portal/pkg/auth"
)

func setup(t *testing.T, api http.Handler) *domaintest.Harness {
	h := domaintest.New(t, api)
	handlers := NewAuthHandlers(h.Base, CookieConfig{Name: domaintest.CookieName})
	h.Router.GET("/login", handlers.ShowLogin)
	h.Router.POST("/login", handlers.Login)
	h.Router.GET("/signup", handlers.ShowSignup)
	h.Router.POST("/signup", handlers.Register)
	h.Router.POST("/logout", handlers.Logout)
	h.Router.GET("/forgot-password", handlers.ShowForgotPassword)
	h.Router.POST("/forgot-password", handlers.ForgotPassword)
	h.Router.GET("/reset-password", handlers.ShowResetPassword)
	h.Router.POST("/reset-password", handlers.ResetPassword)
	return h
}

// campusAPI issues a real member token on login and answers the session
// check for it.
func campusAPI(t *testing.T) (http.Handler, *atomic.Int32) {
	issued, err := tokens.GenerateToken(domaintest.Secret, "u-7", "ada@campus.edu", access.RoleMember, time.Hour)
	require.NoError(t, err)
	var meCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: domaintest.CookieName, Value: issued, Path: "/"})
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		c, err := r.Cookie(domaintest.CookieName)
		if err != nil || c.Value != issued {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"u-7","name":"Ada","email":"ada@campus.edu","role":"MEMBER"}}`))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/auth/forgot-password", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"No such user"}`))
	})
	mux.HandleFunc("/auth/reset-password", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"created"}`))
	})
	return mux, &meCalls
}

func accessCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == domaintest.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin_RelaysIssuedCredentialAndLands(t *testing.T) {
	api, meCalls := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Form:   url.Values{"email": {"ada@campus.edu"}, "password": {"correct horse"}},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/members", w.Header().Get("Location"))
	assert.Equal(t, int32(1), meCalls.Load())

	c := accessCookie(w)
	require.NotNil(t, c)
	claims, err := tokens.VerifyToken(c.Value, domaintest.Secret)
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.UserID)
	assert.True(t, c.HttpOnly)
}

func TestLogin_WrongPasswordStaysOnForm(t *testing.T) {
	api, meCalls := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Form:   url.Values{"email": {"ada@campus.edu"}, "password": {"wrong"}},
		HTMX:   true,
		Page:   "/login",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("HX-Redirect"))
	assert.Nil(t, accessCookie(w))
	assert.Equal(t, int32(0), meCalls.Load())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "Invalid email or password.", doc.Find("#login-form .banner-error").Text())
	val, _ := doc.Find(`input[name="email"]`).Attr("value")
	assert.Equal(t, "ada@campus.edu", val)
	_, hasPassword := doc.Find(`input[name="password"]`).Attr("value")
	assert.False(t, hasPassword)
}

func TestLogin_SignedInVisitorIsSentHome(t *testing.T) {
	api, _ := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{Path: "/login", Token: domaintest.Token(t, access.RoleStudent)})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestShowLogin_StatusNotices(t *testing.T) {
	api, _ := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{Path: "/login?status=registered"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Account created. Please sign in.")
}

func TestRegister_WithoutAutoSignInGoesToLogin(t *testing.T) {
	api, meCalls := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/signup",
		Form: url.Values{
			"name":             {"Ada"},
			"email":            {"ada@campus.edu"},
			"password":         {"long enough"},
			"confirm_password": {"long enough"},
		},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?status=registered", w.Header().Get("Location"))
	assert.Equal(t, int32(0), meCalls.Load())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	api, _ := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/signup",
		Form: url.Values{
			"name":             {"Ada"},
			"email":            {"ada@campus.edu"},
			"password":         {"long enough"},
			"confirm_password": {"different!"},
		},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match.")
}

func TestLogout_ExpiresCookieEvenWhenAPIFails(t *testing.T) {
	api, _ := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/logout",
		Token:  domaintest.Token(t, access.RoleMember),
		HTMX:   true,
		Page:   "/members",
	})

	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
	c := accessCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestForgotPassword_UnknownAddressGetsNeutralAnswer(t *testing.T) {
	api, _ := campusAPI(t)
	h := setup(t, api)

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/forgot-password",
		Form:   url.Values{"email": {"nobody@campus.edu"}},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "If an account exists for that address")
	assert.NotContains(t, w.Body.String(), "No such user")
}

func TestResetPassword(t *testing.T) {
	api, _ := campusAPI(t)
	h := setup(t, api)

	t.Run("missing token", func(t *testing.T) {
		w := h.Do(domaintest.Request{Path: "/reset-password"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "That reset link is invalid.")
	})

	t.Run("success", func(t *testing.T) {
		w := h.Do(domaintest.Request{
			Method: http.MethodPost,
			Path:   "/reset-password",
			Form: url.Values{
				"token":            {"reset-abc"},
				"password":         {"long enough"},
				"confirm_password": {"long enough"},
			},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?status=reset", w.Header().Get("Location"))
	})
}
