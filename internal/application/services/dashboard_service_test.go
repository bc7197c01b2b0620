package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
)

func TestComputeSnapshotOnEmptyStore(t *testing.T) {
	repo, _ := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	assert.Empty(t, snapshot.ViewsByDay)
	assert.NotNil(t, snapshot.ViewsByDay)
	assert.Empty(t, snapshot.DatesClicked)
	assert.Zero(t, snapshot.Retention.TotalUsers)
	assert.Zero(t, snapshot.Retention.ReturningRate)
	assert.Zero(t, snapshot.Retention.D1RetentionRate)
	assert.Zero(t, snapshot.LinkClicks.Total)
	assert.Empty(t, snapshot.LinkClicks.TopLinks)
	assert.Zero(t, snapshot.Errors.Total)
	assert.Zero(t, snapshot.PageLoad.Samples)
	assert.Zero(t, snapshot.PageLoad.AvgMs)
	assert.Zero(t, snapshot.PageLoad.P95Ms)
	assert.Empty(t, snapshot.SearchGeo.EnteredCities)
	assert.Empty(t, snapshot.SearchGeo.Countries)
}

func TestComputeSnapshotPageLoadPercentile(t *testing.T) {
	repo, db := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())

	for i := 1; i <= 10; i++ {
		seedEvents(t, db, `INSERT INTO events (ts, event_type, load_ms) VALUES
			('2026-08-26T10:00:00.000Z', 'page_perf', ?)`, float64(i*10))
	}

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	assert.Equal(t, 10, snapshot.PageLoad.Samples)
	assert.Equal(t, 55.0, snapshot.PageLoad.AvgMs)
	assert.Equal(t, 100.0, snapshot.PageLoad.MaxMs)
	// floor(0.95 * 10) = rank 9, the largest sample.
	assert.Equal(t, 100.0, snapshot.PageLoad.P95Ms)
}

func TestComputeSnapshotRetentionRates(t *testing.T) {
	repo, db := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())
	svc.now = func() time.Time {
		return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	}

	// alice returns the next day, bob never comes back.
	seedEvents(t, db, `INSERT INTO events (ts, event_type, client_id) VALUES
		('2026-08-25T10:00:00.000Z', 'page_view', 'alice'),
		('2026-08-26T10:00:00.000Z', 'page_view', 'alice'),
		('2026-08-25T11:00:00.000Z', 'page_view', 'bob')`)

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.Retention.TotalUsers)
	assert.Equal(t, 1, snapshot.Retention.ReturningUsers)
	assert.Equal(t, 50.0, snapshot.Retention.ReturningRate)
	// Pairs: alice@25, alice@26, bob@25. Only alice@25 has a next-day visit.
	assert.InDelta(t, 33.33, snapshot.Retention.D1RetentionRate, 0.001)
}

func TestComputeSnapshotFullReturningRate(t *testing.T) {
	repo, db := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())

	seedEvents(t, db, `INSERT INTO events (ts, event_type, client_id) VALUES
		('2026-08-25T10:00:00.000Z', 'page_view', 'alice'),
		('2026-08-26T10:00:00.000Z', 'page_view', 'alice')`)

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.Retention.TotalUsers)
	assert.Equal(t, 1, snapshot.Retention.ReturningUsers)
	assert.Equal(t, 100.0, snapshot.Retention.ReturningRate)
}

func TestComputeSnapshotLinkClicks(t *testing.T) {
	repo, db := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())

	seedEvents(t, db, `INSERT INTO events (ts, event_type, link_url) VALUES
		('2026-08-26T10:00:00.000Z', 'link_click', 'https://x.example'),
		('2026-08-26T10:01:00.000Z', 'link_click', 'https://x.example'),
		('2026-08-26T10:02:00.000Z', 'link_click', 'https://x.example'),
		('2026-08-26T10:03:00.000Z', 'link_click', 'https://y.example')`)

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	assert.Equal(t, 4, snapshot.LinkClicks.Total)
	require.Len(t, snapshot.LinkClicks.TopLinks, 2)
	assert.Equal(t, analytics.LinkCount{LinkURL: "https://x.example", Count: 3}, snapshot.LinkClicks.TopLinks[0])
}

func TestComputeSnapshotErrorsBlock(t *testing.T) {
	repo, db := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())

	seedEvents(t, db, `INSERT INTO events (ts, event_type, error_code, error_message) VALUES
		('2026-08-26T10:00:00.100Z', 'error', '', 'first'),
		('2026-08-26T10:00:01.200Z', 'error', NULL, 'second'),
		('2026-08-26T10:00:02.300Z', 'error', 'timeout', NULL)`)

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.Errors.Total)
	require.Len(t, snapshot.Errors.ByCode, 2)
	assert.Equal(t, analytics.CodeCount{Code: "unknown", Count: 2}, snapshot.Errors.ByCode[0])
	assert.Equal(t, analytics.CodeCount{Code: "timeout", Count: 1}, snapshot.Errors.ByCode[1])

	require.Len(t, snapshot.Errors.Recent, 3)
	assert.Equal(t, analytics.RecentError{TS: "2026-08-26T10:00:02", Message: ""}, snapshot.Errors.Recent[0])
	assert.Equal(t, analytics.RecentError{TS: "2026-08-26T10:00:00", Message: "first"}, snapshot.Errors.Recent[2])
}

func TestComputeSnapshotViewsByDay(t *testing.T) {
	repo, db := newEventStore(t)
	svc := NewDashboardService(repo, newQuietLogger(t), newPerfTracker())

	seedEvents(t, db, `INSERT INTO events (ts, event_type) VALUES
		('2026-08-25T10:00:00.000Z', 'page_view'),
		('2026-08-26T10:00:00.000Z', 'page_view'),
		('2026-08-26T11:00:00.000Z', 'page_view')`)

	snapshot, err := svc.ComputeSnapshot()
	require.NoError(t, err)

	require.Len(t, snapshot.ViewsByDay, 2)
	assert.Equal(t, analytics.DayCount{Day: "2026-08-26", Count: 2}, snapshot.ViewsByDay[0])
	assert.Equal(t, analytics.DayCount{Day: "2026-08-25", Count: 1}, snapshot.ViewsByDay[1])
}
