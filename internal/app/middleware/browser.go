package middleware

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/profilestore"
)

const visitorIDKey = "visitor_id"

// Browser is the per-request view of the visitor's browser. Navigate only
// records the target; the response is written once by the handler or, if it
// did not, by BrowserBinding after the handler returns. The first target
// wins, so repeated navigations are harmless.
type Browser struct {
	mu      sync.Mutex
	current string
	target  string
}

func NewBrowser(current string) *Browser {
	return &Browser{current: current}
}

func (b *Browser) CurrentPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Browser) Navigate(target string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.target == "" {
		b.target = target
	}
}

// Navigated reports the pending navigation, if any.
func (b *Browser) Navigated() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target, b.target != ""
}

// ProfileSource picks the profile backend for one request. Returning nil
// gives the request a memory-only store.
type ProfileSource func(c *gin.Context) profilestore.KV

// SessionProfiles keeps the profile in the cookie session.
func SessionProfiles() ProfileSource {
	return func(c *gin.Context) profilestore.KV {
		return profilestore.NewSessionKV(sessions.Default(c))
	}
}

// SharedProfiles keeps the profile in a shared backend (Redis or process
// memory), keyed by a visitor id held in the cookie session.
func SharedProfiles(kv profilestore.KV) ProfileSource {
	return func(c *gin.Context) profilestore.KV {
		return profilestore.Namespaced(kv, VisitorID(c))
	}
}

// VisitorID returns the stable anonymous id of this browser, creating it on
// first use.
func VisitorID(c *gin.Context) string {
	session := sessions.Default(c)
	if id, ok := session.Get(visitorIDKey).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Set(visitorIDKey, id)
	if err := session.Save(); err != nil {
		zap.L().Warn("Failed to persist visitor id", zap.Error(err))
	}
	return id
}

// BindingConfig configures BrowserBinding.
type BindingConfig struct {
	Factory    *apiclient.Factory
	CookieName string
	Profiles   ProfileSource
	Logger     *zap.Logger
}

// BrowserBinding builds the visitor's apiclient.Env: a cookie jar seeded
// with the access cookie, the browser adapter and the profile store.
func BrowserBinding(cfg BindingConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "accessToken"
	}

	return func(c *gin.Context) {
		token, _ := c.Cookie(cfg.CookieName)

		var kv profilestore.KV
		if cfg.Profiles != nil {
			kv = cfg.Profiles(c)
		}

		browser := NewBrowser(currentPath(c.Request))
		env := apiclient.Env{
			Jar:      cfg.Factory.NewJar(token),
			Browser:  browser,
			Profiles: profilestore.New(kv, cfg.Logger),
		}
		c.Set(string(EnvContextKey), env)
		c.Set(string(BrowserContextKey), browser)

		c.Next()

		if target, ok := browser.Navigated(); ok && !c.Writer.Written() {
			Redirect(c, target)
		}
	}
}

// currentPath is the page the visitor is looking at. A navigation, boosted
// links included, is the page being requested. Other htmx requests report it
// in HX-Current-URL and a plain form post carries it in Referer.
func currentPath(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Header.Get("HX-Boosted") == "true" {
		return r.URL.Path
	}
	if r.Header.Get("HX-Request") == "true" {
		if p, ok := sameHostPath(r, r.Header.Get("HX-Current-URL")); ok {
			return p
		}
	}
	if p, ok := sameHostPath(r, r.Referer()); ok {
		return p
	}
	return r.URL.Path
}

func sameHostPath(r *http.Request, raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "", false
	}
	if u.Host != "" && u.Host != r.Host {
		return "", false
	}
	return u.Path, true
}
