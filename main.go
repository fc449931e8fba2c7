package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/pkg/config"
	"github.com/techsupport-hub/portal/internal/server"
	"github.com/techsupport-hub/portal/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel,
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("version", version)); err != nil {
		return err
	}
	defer logger.Sync()
	lg := logger.Log

	otelShutdown, err := server.InitObservability(cfg.Observability, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			lg.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(cfg, lg)
	if err != nil {
		return err
	}
	defer srv.Close()

	gin.SetMode(gin.ReleaseMode)
	router, err := server.SetupRouter(cfg, srv.ProfileSource(), lg)
	if err != nil {
		return err
	}
	srv.SetRouter(router)

	// pprof listens on its own address, never the public one
	server.StartPprofServer(cfg.Observability.PprofAddr, lg)

	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(httpServer, cfg.API.Timeout+5*time.Second, lg, done)

	lg.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("api", cfg.API.BaseURL),
		zap.String("profile_store", cfg.ProfileStore))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Error("Server error", zap.Error(err))
		return err
	}

	<-done
	lg.Info("Graceful shutdown complete")

	return nil
}
