package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChanneledLoggerWithSilentConfig(t *testing.T) {
	logger, err := NewChanneledLogger(&LoggerConfig{})
	require.NoError(t, err)

	// Every channel accessor must return a usable logger even when no
	// writer is configured.
	assert.NotNil(t, logger.System())
	assert.NotNil(t, logger.Startup())
	assert.NotNil(t, logger.Shutdown())
	assert.NotNil(t, logger.Auth())
	assert.NotNil(t, logger.Ingest())
	assert.NotNil(t, logger.Analytics())
	assert.NotNil(t, logger.Weather())
	assert.NotNil(t, logger.Database())
	assert.NotNil(t, logger.SlowQuery())

	logger.LogSlowQuery("SELECT 1", time.Second)
	assert.NoError(t, logger.Close())
}

func TestSanitizeQueryFlattensAndTruncates(t *testing.T) {
	logger, err := NewChanneledLogger(&LoggerConfig{})
	require.NoError(t, err)

	flattened := logger.sanitizeQuery("SELECT *\n\tFROM events\n\tWHERE  id = ?")
	assert.Equal(t, "SELECT * FROM events WHERE id = ?", flattened)

	long := strings.Repeat("x", 600)
	truncated := logger.sanitizeQuery(long)
	assert.Len(t, truncated, 503)
	assert.True(t, strings.HasSuffix(truncated, "..."))
}
