package server

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/pkg/config"
	"github.com/techsupport-hub/portal/internal/pkg/profilestore"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	redis  *redis.Client
	router http.Handler
}

// New creates a new Server instance with all dependencies
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.ProfileStore == config.ProfileStoreRedis {
		s.redis = s.setupRedis(context.Background())
	}

	return s, nil
}

// setupRedis connects the shared profile cache. An unreachable Redis is not
// fatal: profile stores fall back to memory on the first failed call.
func (s *Server) setupRedis(ctx context.Context) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		s.logger.Warn("Redis unreachable, profiles will be cached in memory until it recovers",
			zap.String("addr", s.cfg.Redis.Addr),
			zap.Error(err))
	} else {
		s.logger.Info("Connected to Redis",
			zap.String("addr", s.cfg.Redis.Addr),
			zap.Int("db", s.cfg.Redis.DB))
	}
	return client
}

// ProfileSource picks where visitors' cached profiles live.
func (s *Server) ProfileSource() middleware.ProfileSource {
	switch s.cfg.ProfileStore {
	case config.ProfileStoreRedis:
		return middleware.SharedProfiles(profilestore.NewRedisKV(s.redis, s.cfg.Redis.ProfileTTL))
	case config.ProfileStoreMemory:
		return middleware.SharedProfiles(profilestore.NewMemoryKV(s.cfg.Redis.ProfileTTL))
	default:
		return middleware.SessionProfiles()
	}
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.cfg.API.Timeout + 15*time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Close closes all server resources
func (s *Server) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}
