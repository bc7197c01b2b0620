// Package analytics provides the concrete SQL-based implementation of the
// append-only analytics event store.
//
// All aggregation is pushed down to the store: counting, grouping by the
// derived calendar day (substr of the stored UTC timestamp) and ordering
// by count happen in SQL, so the same queries run against sqlite3 and
// libsql backends.
package analytics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
	"github.com/pogoda-app/pogoda-go/pkg/config"
)

// timestampLayout is the stored UTC timestamp format. substr(ts,1,10) is
// the calendar day and substr(ts,1,19) drops the sub-second part, which
// the aggregation queries rely on.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SQLEventRepository persists analytics events to the events table.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one event row. The store assigns the surrogate id and the
// UTC timestamp; both are written back onto the event.
func (r *SQLEventRepository) Append(event *analytics.Event) (int64, error) {
	const query = `
		INSERT INTO events (ts, event_type, client_id, session_id, path,
			city_input, city_resolved, country, country_code,
			target_date, purpose, link_url, error_code, error_message,
			load_ms, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	ts := start.UTC().Format(timestampLayout)

	result, err := r.db.Exec(
		query,
		ts,
		event.EventType,
		event.ClientID,
		event.SessionID,
		event.Path,
		event.CityInput,
		event.CityResolved,
		event.Country,
		event.CountryCode,
		event.TargetDate,
		event.Purpose,
		event.LinkURL,
		event.ErrorCode,
		event.ErrorMessage,
		event.LoadMs,
		event.Meta,
	)
	if err != nil {
		r.logger.Database().Error("Event insert failed",
			"error", err.Error(),
			"eventType", event.EventType)
		return 0, fmt.Errorf("failed to store event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}

	event.ID = id
	event.Timestamp = ts

	r.logger.Database().Debug("Event insert completed",
		"eventId", id,
		"eventType", event.EventType,
		"duration", time.Since(start))
	r.checkSlowQuery(query, start)
	return id, nil
}

// FindByType retrieves the most recent events of one type, newest first.
func (r *SQLEventRepository) FindByType(eventType string, limit int) ([]*analytics.Event, error) {
	const query = `
		SELECT id, ts, event_type, client_id, session_id, path,
			city_input, city_resolved, country, country_code,
			target_date, purpose, link_url, error_code, error_message,
			load_ms, meta
		FROM events
		WHERE event_type = ?
		ORDER BY id DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, eventType, limit)
	if err != nil {
		r.logger.Database().Error("Failed to query events by type", "error", err.Error(), "eventType", eventType)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*analytics.Event
	for rows.Next() {
		var event analytics.Event
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.EventType,
			&event.ClientID,
			&event.SessionID,
			&event.Path,
			&event.CityInput,
			&event.CityResolved,
			&event.Country,
			&event.CountryCode,
			&event.TargetDate,
			&event.Purpose,
			&event.LinkURL,
			&event.ErrorCode,
			&event.ErrorMessage,
			&event.LoadMs,
			&event.Meta,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return events, nil
}

// CountByType returns the total number of events of one type.
func (r *SQLEventRepository) CountByType(eventType string) (int, error) {
	const query = `SELECT COUNT(*) FROM events WHERE event_type = ?`

	var count int
	if err := r.db.QueryRow(query, eventType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// ViewsByDay counts page_view events grouped by UTC calendar day, most
// recent days first.
func (r *SQLEventRepository) ViewsByDay(limit int) ([]analytics.DayCount, error) {
	const query = `
		SELECT substr(ts, 1, 10) AS day, COUNT(*) AS cnt
		FROM events
		WHERE event_type = 'page_view'
		GROUP BY day
		ORDER BY day DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query views by day: %w", err)
	}
	defer rows.Close()

	counts := make([]analytics.DayCount, 0)
	for rows.Next() {
		var dc analytics.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return counts, nil
}

// DatesClicked counts weather_search events grouped by requested forecast
// date, highest counts first, ties broken by the later date.
func (r *SQLEventRepository) DatesClicked(limit int) ([]analytics.DateCount, error) {
	const query = `
		SELECT target_date, COUNT(*) AS cnt
		FROM events
		WHERE event_type = 'weather_search'
			AND target_date IS NOT NULL AND target_date != ''
		GROUP BY target_date
		ORDER BY cnt DESC, target_date DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates clicked: %w", err)
	}
	defer rows.Close()

	counts := make([]analytics.DateCount, 0)
	for rows.Next() {
		var dc analytics.DateCount
		if err := rows.Scan(&dc.TargetDate, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan date count: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return counts, nil
}

// RetentionCounts returns the number of distinct visitors and how many of
// them have events on more than one calendar day.
func (r *SQLEventRepository) RetentionCounts() (int, int, error) {
	const totalQuery = `
		SELECT COUNT(DISTINCT client_id)
		FROM events
		WHERE client_id IS NOT NULL AND client_id != ''`

	const returningQuery = `
		SELECT COUNT(*) FROM (
			SELECT client_id
			FROM events
			WHERE client_id IS NOT NULL AND client_id != ''
			GROUP BY client_id
			HAVING COUNT(DISTINCT substr(ts, 1, 10)) > 1
		)`

	start := time.Now()

	var total int
	if err := r.db.QueryRow(totalQuery).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count total users: %w", err)
	}

	var returning int
	if err := r.db.QueryRow(returningQuery).Scan(&returning); err != nil {
		return 0, 0, fmt.Errorf("failed to count returning users: %w", err)
	}

	r.checkSlowQuery(returningQuery, start)
	return total, returning, nil
}

// D1Pairs evaluates next-day retention: over all distinct (client, day)
// pairs with day strictly before today, how many clients were also seen
// on day+1. today must be a UTC YYYY-MM-DD string.
func (r *SQLEventRepository) D1Pairs(today string) (int, int, error) {
	const query = `
		WITH client_days AS (
			SELECT DISTINCT client_id, substr(ts, 1, 10) AS day
			FROM events
			WHERE client_id IS NOT NULL AND client_id != ''
		)
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN EXISTS (
				SELECT 1 FROM client_days n
				WHERE n.client_id = d.client_id
					AND n.day = date(d.day, '+1 day')
			) THEN 1 ELSE 0 END), 0)
		FROM client_days d
		WHERE d.day < ?`

	start := time.Now()

	var pairs, retained int
	if err := r.db.QueryRow(query, today).Scan(&pairs, &retained); err != nil {
		return 0, 0, fmt.Errorf("failed to evaluate d1 retention pairs: %w", err)
	}

	r.checkSlowQuery(query, start)
	return pairs, retained, nil
}

// TopLinks counts link_click events grouped by non-empty link URL. Ties
// keep insertion order via MIN(id).
func (r *SQLEventRepository) TopLinks(limit int) ([]analytics.LinkCount, error) {
	const query = `
		SELECT link_url, COUNT(*) AS cnt
		FROM events
		WHERE event_type = 'link_click'
			AND link_url IS NOT NULL AND link_url != ''
		GROUP BY link_url
		ORDER BY cnt DESC, MIN(id) ASC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top links: %w", err)
	}
	defer rows.Close()

	counts := make([]analytics.LinkCount, 0)
	for rows.Next() {
		var lc analytics.LinkCount
		if err := rows.Scan(&lc.LinkURL, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan link count: %w", err)
		}
		counts = append(counts, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return counts, nil
}

// ErrorsByCode counts error events grouped by code; rows without a code
// fall into the "unknown" bucket.
func (r *SQLEventRepository) ErrorsByCode() ([]analytics.CodeCount, error) {
	const query = `
		SELECT COALESCE(NULLIF(error_code, ''), 'unknown') AS code, COUNT(*) AS cnt
		FROM events
		WHERE event_type = 'error'
		GROUP BY code
		ORDER BY cnt DESC, MIN(id) ASC`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query errors by code: %w", err)
	}
	defer rows.Close()

	counts := make([]analytics.CodeCount, 0)
	for rows.Next() {
		var cc analytics.CodeCount
		if err := rows.Scan(&cc.Code, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan code count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return counts, nil
}

// RecentErrors returns the latest error events, newest first, with the
// timestamp truncated to seconds and an empty message when absent.
func (r *SQLEventRepository) RecentErrors(limit int) ([]analytics.RecentError, error) {
	const query = `
		SELECT substr(ts, 1, 19), COALESCE(error_message, '')
		FROM events
		WHERE event_type = 'error'
		ORDER BY ts DESC, id DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent errors: %w", err)
	}
	defer rows.Close()

	recent := make([]analytics.RecentError, 0)
	for rows.Next() {
		var re analytics.RecentError
		if err := rows.Scan(&re.TS, &re.Message); err != nil {
			return nil, fmt.Errorf("failed to scan recent error: %w", err)
		}
		recent = append(recent, re)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return recent, nil
}

// PageLoadStats returns sample count, mean and maximum over page_perf
// events that carry a load_ms sample.
func (r *SQLEventRepository) PageLoadStats() (int, float64, float64, error) {
	const query = `
		SELECT COUNT(*), COALESCE(AVG(load_ms), 0), COALESCE(MAX(load_ms), 0)
		FROM events
		WHERE event_type = 'page_perf' AND load_ms IS NOT NULL`

	var samples int
	var avgMs, maxMs float64
	if err := r.db.QueryRow(query).Scan(&samples, &avgMs, &maxMs); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to compute page load stats: %w", err)
	}
	return samples, avgMs, maxMs, nil
}

// PageLoadValueAt returns the load_ms sample at the given 0-indexed rank
// of the ascending-sorted sample set (offset-based nearest-rank lookup).
func (r *SQLEventRepository) PageLoadValueAt(rank int) (float64, error) {
	const query = `
		SELECT load_ms
		FROM events
		WHERE event_type = 'page_perf' AND load_ms IS NOT NULL
		ORDER BY load_ms ASC
		LIMIT 1 OFFSET ?`

	var value float64
	err := r.db.QueryRow(query, rank).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read page load percentile value: %w", err)
	}
	return value, nil
}

// EnteredCities counts weather_search events grouped by the city string
// the user typed. Ties keep insertion order via MIN(id).
func (r *SQLEventRepository) EnteredCities(limit int) ([]analytics.CityCount, error) {
	const query = `
		SELECT city_input, COUNT(*) AS cnt
		FROM events
		WHERE event_type = 'weather_search'
			AND city_input IS NOT NULL AND city_input != ''
		GROUP BY city_input
		ORDER BY cnt DESC, MIN(id) ASC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entered cities: %w", err)
	}
	defer rows.Close()

	counts := make([]analytics.CityCount, 0)
	for rows.Next() {
		var cc analytics.CityCount
		if err := rows.Scan(&cc.City, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan city count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return counts, nil
}

// Countries counts weather_search events grouped by resolved country;
// rows without a country fall into the "Unknown" bucket. Grouping must
// use the full expression: a bare `country` in GROUP BY binds to the raw
// column and would split NULL and empty string into two Unknown rows.
func (r *SQLEventRepository) Countries(limit int) ([]analytics.CountryCount, error) {
	const query = `
		SELECT COALESCE(NULLIF(country, ''), 'Unknown') AS country, COUNT(*) AS cnt
		FROM events
		WHERE event_type = 'weather_search'
		GROUP BY COALESCE(NULLIF(country, ''), 'Unknown')
		ORDER BY cnt DESC, MIN(id) ASC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	counts := make([]analytics.CountryCount, 0)
	for rows.Next() {
		var cc analytics.CountryCount
		if err := rows.Scan(&cc.Country, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan country count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.checkSlowQuery(query, start)
	return counts, nil
}

func (r *SQLEventRepository) checkSlowQuery(query string, start time.Time) {
	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
}
