package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/profilestore"
	"github.com/techsupport-hub/portal/pkg/auth"
)

// Define typed context keys
type contextKey string

const (
	ClaimsContextKey  contextKey = "claims"
	EnvContextKey     contextKey = "apiEnv"
	BrowserContextKey contextKey = "browser"
)

// CORSMiddleware allows credentialed requests from the configured origins.
// With no origins configured only same-origin requests are served.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token", "Cache-Control", "X-Requested-With", "HX-Request", "HX-Target", "HX-Current-URL", "HX-Trigger"},
		ExposeHeaders:    []string{"HX-Redirect", "HX-Retarget", "HX-Reswap"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// htmx is served from unpkg; everything else is first party.
		csp := "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data: https:; " +
			"connect-src 'self'"
		c.Writer.Header().Set("Content-Security-Policy", csp)

		c.Next()
	}
}

// Redirect performs a full navigation: HX-Redirect for htmx requests so the
// whole page is replaced, a 302 otherwise.
func Redirect(c *gin.Context, target string) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", target)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// handleAuthRedirect redirects and stops the chain.
func handleAuthRedirect(c *gin.Context, target string) {
	Redirect(c, target)
	c.Abort()
}

// GetClaimsFromContext returns the verified claims, or nil when the visitor
// has no valid session.
func GetClaimsFromContext(c *gin.Context) *auth.Claims {
	v, ok := c.Get(string(ClaimsContextKey))
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// GetEnvFromContext returns the API environment bound to this visitor.
func GetEnvFromContext(c *gin.Context) (apiclient.Env, bool) {
	v, ok := c.Get(string(EnvContextKey))
	if !ok {
		return apiclient.Env{}, false
	}
	env, ok := v.(apiclient.Env)
	return env, ok
}

// GetBrowserFromContext returns the browser adapter for this request.
func GetBrowserFromContext(c *gin.Context) *Browser {
	v, ok := c.Get(string(BrowserContextKey))
	if !ok {
		return nil
	}
	b, _ := v.(*Browser)
	return b
}

// GetProfilesFromContext returns the visitor's profile store.
func GetProfilesFromContext(c *gin.Context) *profilestore.Store {
	env, ok := GetEnvFromContext(c)
	if !ok {
		return nil
	}
	return env.Profiles
}

// GetUserFromContext returns the cached profile for display. It is only
// returned while the visitor holds a verified session.
func GetUserFromContext(c *gin.Context) *models.User {
	if GetClaimsFromContext(c) == nil {
		return nil
	}
	profiles := GetProfilesFromContext(c)
	if profiles == nil {
		return nil
	}
	user, ok := profiles.Load(c.Request.Context())
	if !ok {
		return nil
	}
	return user
}
