package server

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pogoda-app/pogoda-go/internal/application/container"
	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewTableCreator().CreateSchema(db.DB))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{})
	require.NoError(t, err)

	return container.NewContainer(db, logger, services.AuthConfig{
		Password:   "letmein",
		CookieName: "pogoda_dash",
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
	})
}

func TestNewAppliesConfiguredAddress(t *testing.T) {
	s := New("8123", newTestContainer(t))

	require.NotNil(t, s.httpServer)
	assert.Equal(t, ":8123", s.httpServer.Addr)
	assert.NotNil(t, s.httpServer.Handler)
}

func TestStopBeforeStartIsSafe(t *testing.T) {
	s := New("8124", newTestContainer(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
