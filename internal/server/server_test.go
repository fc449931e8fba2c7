package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/pkg/config"
)

func TestNew_ProfileSources(t *testing.T) {
	for _, store := range []string{config.ProfileStoreSession, config.ProfileStoreMemory, config.ProfileStoreRedis} {
		t.Run(store, func(t *testing.T) {
			cfg := &config.Config{
				ServerPort:   "8091",
				API:          config.APIConfig{Timeout: 10 * time.Second},
				ProfileStore: store,
				// Nothing listens here; the server must still start.
				Redis: config.RedisConfig{Addr: "127.0.0.1:1", ProfileTTL: time.Hour},
			}
			srv, err := New(cfg, zap.NewNop())
			require.NoError(t, err)
			defer srv.Close()

			assert.NotNil(t, srv.ProfileSource())
			assert.Equal(t, store == config.ProfileStoreRedis, srv.redis != nil)

			httpServer := srv.HTTPServer()
			assert.Equal(t, ":8091", httpServer.Addr)
			assert.Equal(t, 25*time.Second, httpServer.WriteTimeout)
		})
	}
}
