package server

import (
	"fmt"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/config"
	"github.com/techsupport-hub/portal/internal/routes"
	"github.com/techsupport-hub/portal/pkg/auth"
)

const sessionName = "portal_session"

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(cfg *config.Config, profiles middleware.ProfileSource, logger *zap.Logger) (*gin.Engine, error) {
	table, err := access.LoadTable(cfg.Auth.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load access rules: %w", err)
	}
	logger.Info("Access rules loaded",
		zap.String("file", cfg.Auth.RulesFile),
		zap.Int("rules", len(table.Rules())))
	clients, err := apiclient.NewFactory(apiclient.Config{
		BaseURL:         cfg.API.BaseURL,
		CookieName:      cfg.Auth.CookieName,
		Timeout:         cfg.API.Timeout,
		ExemptEndpoints: cfg.API.ExemptEndpoints,
	}, table, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API clients: %w", err)
	}

	var verifier auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.OTELGinMiddleware(cfg.Observability.ServiceName))
	r.Use(middleware.HTTPMetrics())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.SecurityMiddleware())

	store := cookie.NewStore([]byte(cfg.Auth.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Auth.CookieSecure,
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.BrowserBinding(middleware.BindingConfig{
		Factory:    clients,
		CookieName: cfg.Auth.CookieName,
		Profiles:   profiles,
		Logger:     logger,
	}))
	r.Use(middleware.RouteGuard(middleware.GuardConfig{
		Table:      table,
		Verifier:   verifier,
		CookieName: cfg.Auth.CookieName,
		Logger:     logger,
	}))

	routes.Setup(r, clients, cfg, logger)

	return r, nil
}

// zapContextFunc adds request and trace ids to the access log. Bodies are
// never logged: they carry passwords.
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get(middleware.RequestIDHeader); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		return fields
	}
}
