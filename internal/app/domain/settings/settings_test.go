package settings

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techsupport-hub/portal/internal/app/domain/domaintest"
	"github.com/techsupport-hub/portal/internal/pkg/access"
)

func setup(t *testing.T, api http.Handler) *domaintest.Harness {
	h := domaintest.New(t, api)
	handlers := NewSettingsHandlers(h.Base)
	h.Router.GET("/settings", handlers.ShowSettings)
	h.Router.POST("/settings/profile", handlers.UpdateProfile)
	h.Router.GET("/account", handlers.ShowAccount)
	return h
}

func profileAPI(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u-1","name":"Ada","email":"ada@campus.edu","role":"MEMBER","department":"CS"}`))
	})
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"u-1","name":"` + body["name"] + `","email":"ada@campus.edu","role":"MEMBER","department":"` + body["department"] + `"}`))
	})
	return mux
}

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestShowSettings_PrefillsProfile(t *testing.T) {
	h := setup(t, profileAPI(t))

	w := h.Do(domaintest.Request{Path: "/settings", Token: domaintest.Token(t, access.RoleMember)})

	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w.Body.String())
	name, _ := doc.Find(`#profile-form input[name="name"]`).Attr("value")
	dept, _ := doc.Find(`#profile-form input[name="department"]`).Attr("value")
	assert.Equal(t, "Ada", name)
	assert.Equal(t, "CS", dept)
}

func TestUpdateProfile_ShowsSavedValues(t *testing.T) {
	h := setup(t, profileAPI(t))

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/settings/profile",
		Form:   url.Values{"name": {"Ada Lovelace"}, "department": {"Maths"}},
		Token:  domaintest.Token(t, access.RoleMember),
		HTMX:   true,
		Page:   "/settings",
	})

	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w.Body.String())
	assert.Equal(t, "Profile updated successfully!", doc.Find("#profile-form .banner-success").Text())
	name, _ := doc.Find(`input[name="name"]`).Attr("value")
	assert.Equal(t, "Ada Lovelace", name)
}

func TestUpdateProfile_RejectedSessionGoesToLogin(t *testing.T) {
	h := setup(t, domaintest.JSON(http.StatusUnauthorized, `{}`))

	w := h.Do(domaintest.Request{
		Method: http.MethodPost,
		Path:   "/settings/profile",
		Form:   url.Values{"name": {"Ada"}},
		Token:  domaintest.Token(t, access.RoleMember),
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestShowAccount(t *testing.T) {
	t.Run("profile available", func(t *testing.T) {
		h := setup(t, profileAPI(t))
		w := h.Do(domaintest.Request{Path: "/account", Token: domaintest.Token(t, access.RoleMember)})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, parse(t, w.Body.String()).Find("#account dl").Text(), "ada@campus.edu")
	})

	t.Run("session check fails", func(t *testing.T) {
		h := setup(t, domaintest.JSON(http.StatusUnauthorized, `{}`))
		w := h.Do(domaintest.Request{Path: "/account", Token: domaintest.Token(t, access.RoleMember)})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Your profile could not be loaded.")
	})
}
