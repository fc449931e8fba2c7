package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/observability/metrics"
	"github.com/techsupport-hub/portal/pkg/auth"
)

// GuardConfig configures RouteGuard. A nil Verifier means the signing
// secret is missing.
type GuardConfig struct {
	Table      *access.Table
	Verifier   auth.Verifier
	CookieName string
	Logger     *zap.Logger
}

// RouteGuard decides every navigation from the access cookie alone. The
// cached profile is never consulted.
func RouteGuard(cfg GuardConfig) gin.HandlerFunc {
	if cfg.Table == nil {
		cfg.Table = access.DefaultTable()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "accessToken"
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		class := cfg.Table.Classify(path)
		claims := verifyRequest(c, cfg)

		if claims == nil {
			if class.RequiresSession() {
				redirect(c, cfg, cfg.Table.LoginPath, "no_session")
				return
			}
			c.Next()
			return
		}

		c.Set(string(ClaimsContextKey), claims)

		switch class.Class {
		case access.GuestOnly:
			redirect(c, cfg, cfg.Table.HomePath, "already_authenticated")
			return
		case access.RoleGated:
			if !class.Allows(claims.AccessRole()) {
				redirect(c, cfg, cfg.Table.HomePath, "role_denied")
				return
			}
		}

		c.Next()
	}
}

// verifyRequest returns the claims of a valid session, or nil. Every
// failure, a missing secret included, is "no session".
func verifyRequest(c *gin.Context, cfg GuardConfig) *auth.Claims {
	token, err := c.Cookie(cfg.CookieName)
	if err != nil || token == "" {
		return nil
	}
	if cfg.Verifier == nil {
		cfg.Logger.Error("Access token present but signing secret is not configured",
			zap.String("path", c.Request.URL.Path))
		return nil
	}
	claims, err := cfg.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			cfg.Logger.Error("Access token present but signing secret is not configured",
				zap.String("path", c.Request.URL.Path))
		} else {
			cfg.Logger.Debug("Ignoring unverifiable access token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		return nil
	}
	return claims
}

func redirect(c *gin.Context, cfg GuardConfig, target, reason string) {
	cfg.Logger.Info("Route guard redirect",
		zap.String("path", c.Request.URL.Path),
		zap.String("target", target),
		zap.String("reason", reason))
	metrics.Get().GuardRedirectsTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("reason", reason)))
	handleAuthRedirect(c, target)
}
