package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
)

func newQuietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{})
	require.NoError(t, err)
	return logger
}

func newEventStore(t *testing.T) (analytics.EventRepository, *database.DB) {
	t.Helper()

	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewTableCreator().CreateSchema(db.DB))

	return analyticsrepo.NewSQLEventRepository(db, newQuietLogger(t)), db
}

func newPerfTracker() *performance.Tracker {
	return performance.NewTracker(100)
}

func seedEvents(t *testing.T, db *database.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}
