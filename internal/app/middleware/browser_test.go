package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/profilestore"
	"github.com/techsupport-hub/portal/pkg/auth"
)

func TestBrowser_NavigateIsIdempotent(t *testing.T) {
	b := NewBrowser("/blogs")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Navigate("/login")
		}()
	}
	wg.Wait()
	b.Navigate("/elsewhere")

	target, ok := b.Navigated()
	assert.True(t, ok)
	assert.Equal(t, "/login", target)
	assert.Equal(t, "/blogs", b.CurrentPath())
}

func TestCurrentPath(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		want    string
	}{
		{"navigation", http.MethodGet, "/guides", nil, "/guides"},
		{"htmx reports page", http.MethodPost, "/blogs", map[string]string{"HX-Request": "true", "HX-Current-URL": "http://example.com/admin/blogs?page=2"}, "/admin/blogs"},
		{"form post uses referer", http.MethodPost, "/blogs", map[string]string{"Referer": "http://example.com/events"}, "/events"},
		{"foreign referer ignored", http.MethodPost, "/blogs", map[string]string{"Referer": "https://evil.test/admin"}, "/blogs"},
		{"get ignores referer", http.MethodGet, "/services", map[string]string{"Referer": "http://example.com/admin"}, "/services"},
		{"boosted link is the page being loaded", http.MethodGet, "/dashboard", map[string]string{"HX-Request": "true", "HX-Boosted": "true", "HX-Current-URL": "http://example.com/guides"}, "/dashboard"},
		{"boosted form post", http.MethodPost, "/blogs", map[string]string{"HX-Request": "true", "HX-Boosted": "true", "HX-Current-URL": "http://example.com/admin"}, "/blogs"},
		{"htmx get loads fragment for itself", http.MethodGet, "/admin/tasks", map[string]string{"HX-Request": "true", "HX-Current-URL": "http://example.com/guides"}, "/admin/tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, currentPath(req))
		})
	}
}

type portal struct {
	api     *httptest.Server
	factory *apiclient.Factory
	router  *gin.Engine
}

// newPortal wires sessions, binding and guard in front of handlers, with a
// fake API behind the client factory.
func newPortal(t *testing.T, api http.Handler, source func() ProfileSource) *portal {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	factory, err := apiclient.NewFactory(apiclient.Config{
		BaseURL:    server.URL,
		CookieName: "accessToken",
		Timeout:    5 * time.Second,
	}, access.DefaultTable(), zap.NewNop())
	require.NoError(t, err)
	factory.SetTransport(http.DefaultTransport)

	profiles := SessionProfiles()
	if source != nil {
		profiles = source()
	}

	r := gin.New()
	r.Use(sessions.Sessions("portal_session", cookie.NewStore([]byte("session-secret-for-tests-only!!"))))
	r.Use(BrowserBinding(BindingConfig{Factory: factory, CookieName: "accessToken", Profiles: profiles}))
	r.Use(RouteGuard(GuardConfig{Table: access.DefaultTable(), Verifier: auth.NewVerifier(testSecret), CookieName: "accessToken"}))

	return &portal{api: server, factory: factory, router: r}
}

func rejectAll(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
}

func TestBrowserBinding_MutationOnPublicPageRedirectsToLogin(t *testing.T) {
	p := newPortal(t, http.HandlerFunc(rejectAll), nil)
	var cleared bool
	p.router.POST("/blogs", func(c *gin.Context) {
		env, ok := GetEnvFromContext(c)
		require.True(t, ok)
		env.Profiles.Set(c.Request.Context(), &models.User{ID: "u-1", Name: "Ada"})

		blogs := apiclient.NewResource[models.Blog](p.factory.Client(apiclient.GroupBlogs, env))
		_, err := blogs.Create(c.Request.Context(), models.NewBlog{Title: "t", Body: "b"})
		assert.True(t, apiclient.IsUnauthorized(err))

		_, ok = env.Profiles.Load(c.Request.Context())
		cleared = !ok
	})

	req := httptest.NewRequest(http.MethodPost, "/blogs", strings.NewReader("title=t"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token(t, access.RoleMember, time.Hour)})
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)

	assert.True(t, cleared)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestBrowserBinding_ReadOnPublicPageStays(t *testing.T) {
	p := newPortal(t, http.HandlerFunc(rejectAll), nil)
	p.router.GET("/guides", func(c *gin.Context) {
		env, _ := GetEnvFromContext(c)
		guides := apiclient.NewResource[models.Guide](p.factory.Client(apiclient.GroupGuides, env))
		if _, err := guides.List(c.Request.Context(), nil); err != nil {
			c.String(http.StatusOK, "guides unavailable")
			return
		}
		c.String(http.StatusOK, "guides")
	})

	w := navigate(p.router, http.MethodGet, "/guides", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guides unavailable", w.Body.String())
	assert.Empty(t, w.Header().Get("Location"))
}

func TestBrowserBinding_HTMXMutationGetsHXRedirect(t *testing.T) {
	p := newPortal(t, http.HandlerFunc(rejectAll), nil)
	p.router.POST("/blogs", func(c *gin.Context) {
		env, _ := GetEnvFromContext(c)
		_ = p.factory.Client(apiclient.GroupBlogs, env).Post(c.Request.Context(), "", map[string]string{"title": "t"}, nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/blogs", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://example.com/blogs")
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
}

func TestBrowserBinding_JarCarriesAccessCookie(t *testing.T) {
	tok := token(t, access.RoleStudent, time.Hour)
	var seen string
	p := newPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("accessToken"); err == nil {
			seen = c.Value
		}
		_, _ = w.Write([]byte(`[]`))
	}), nil)
	p.router.GET("/student/tasks", func(c *gin.Context) {
		env, _ := GetEnvFromContext(c)
		_, err := apiclient.NewResource[models.Task](p.factory.Client(apiclient.GroupTasks, env)).List(c.Request.Context(), nil)
		require.NoError(t, err)
		c.Status(http.StatusNoContent)
	})

	w := navigate(p.router, http.MethodGet, "/student/tasks", tok, false)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, tok, seen)
}

func TestGetUserFromContext_RequiresVerifiedSession(t *testing.T) {
	shared := profilestore.NewMemoryKV(0)
	p := newPortal(t, http.HandlerFunc(rejectAll), func() ProfileSource { return SharedProfiles(shared) })
	p.router.GET("/", func(c *gin.Context) {
		GetProfilesFromContext(c).Set(c.Request.Context(), &models.User{ID: "u-1", Name: "Ada"})
		if user := GetUserFromContext(c); user != nil {
			c.String(http.StatusOK, user.Name)
			return
		}
		c.String(http.StatusOK, "guest")
	})

	w := navigate(p.router, http.MethodGet, "/", "", false)
	assert.Equal(t, "guest", w.Body.String())

	w = navigate(p.router, http.MethodGet, "/", token(t, access.RoleMember, time.Hour), false)
	assert.Equal(t, "Ada", w.Body.String())
}

func boostedGet(path, from, tok string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Boosted", "true")
	req.Header.Set("HX-Current-URL", "http://example.com"+from)
	if tok != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
	}
	return req
}

func TestBrowserBinding_BoostedNavigationUsesRequestedPage(t *testing.T) {
	p := newPortal(t, http.HandlerFunc(rejectAll), nil)
	load := func(group apiclient.Group) gin.HandlerFunc {
		return func(c *gin.Context) {
			env, _ := GetEnvFromContext(c)
			if _, err := apiclient.NewResource[models.Task](p.factory.Client(group, env)).List(c.Request.Context(), nil); err != nil {
				return
			}
			c.String(http.StatusOK, "loaded")
		}
	}
	p.router.GET("/dashboard", load(apiclient.GroupTasks))
	p.router.GET("/guides", load(apiclient.GroupGuides))
	tok := token(t, access.RoleMember, time.Hour)

	t.Run("protected page reached from a public one", func(t *testing.T) {
		w := httptest.NewRecorder()
		p.router.ServeHTTP(w, boostedGet("/dashboard", "/guides", tok))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
	})

	t.Run("public page reached from a protected one", func(t *testing.T) {
		w := httptest.NewRecorder()
		p.router.ServeHTTP(w, boostedGet("/guides", "/dashboard", tok))

		assert.Empty(t, w.Header().Get("HX-Redirect"))
		assert.Empty(t, w.Header().Get("Location"))
	})
}
