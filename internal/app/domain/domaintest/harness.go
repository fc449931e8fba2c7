// Package domaintest runs handlers behind the same session, binding and
// guard middleware the server uses, against a fake campus API.
package domaintest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/profilestore"
	"github.com/techsupport-hub/portal/pkg/auth"
)

const (
	Secret     = "handler-test-secret-at-least-32-chars"
	CookieName = "accessToken"
)

type Harness struct {
	API      *httptest.Server
	Router   *gin.Engine
	Base     *domain.BaseHandler
	Factory  *apiclient.Factory
	Profiles *profilestore.MemoryKV
}

// New serves api under /api/v1 and returns a router with the portal's
// middleware installed and no routes.
func New(t *testing.T, api http.Handler) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	factory, err := apiclient.NewFactory(apiclient.Config{
		BaseURL:    server.URL + "/api/v1",
		CookieName: CookieName,
		Timeout:    5 * time.Second,
	}, access.DefaultTable(), zap.NewNop())
	require.NoError(t, err)
	factory.SetTransport(http.DefaultTransport)

	kv := profilestore.NewMemoryKV(0)
	r := gin.New()
	r.Use(sessions.Sessions("portal_session", cookie.NewStore([]byte("domaintest-session-secret-32-bytes"))))
	r.Use(middleware.BrowserBinding(middleware.BindingConfig{
		Factory:    factory,
		CookieName: CookieName,
		Profiles:   middleware.SharedProfiles(kv),
	}))
	r.Use(middleware.RouteGuard(middleware.GuardConfig{
		Table:      access.DefaultTable(),
		Verifier:   auth.NewVerifier(Secret),
		CookieName: CookieName,
	}))

	return &Harness{
		API:      server,
		Router:   r,
		Base:     domain.NewBaseHandler(zap.NewNop(), factory, nil),
		Factory:  factory,
		Profiles: kv,
	}
}

// Token signs an access token the harness guard accepts.
func Token(t *testing.T, role access.Role) string {
	t.Helper()
	tok, err := auth.GenerateToken(Secret, "u-1", "ada@campus.edu", role, time.Hour)
	require.NoError(t, err)
	return tok
}

// Request describes one browser request.
type Request struct {
	Method string
	Path   string
	Form   url.Values
	Token  string
	HTMX   bool
	// Page is the page the browser is on when it differs from Path.
	Page string
}

func (h *Harness) Do(req Request) *httptest.ResponseRecorder {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	var body *strings.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(req.Method, req.Path, body)
	if req.Form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.Token != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: req.Token})
	}
	if req.HTMX {
		r.Header.Set("HX-Request", "true")
		if req.Page != "" {
			r.Header.Set("HX-Current-URL", "http://example.com"+req.Page)
		}
	} else if req.Page != "" {
		r.Header.Set("Referer", "http://example.com"+req.Page)
	}
	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, r)
	return w
}

// JSON answers every request with status and body.
func JSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
