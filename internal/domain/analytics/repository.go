package analytics

// EventRepository defines the contract for the append-only event store.
// Append assigns the surrogate id and the UTC timestamp; everything else
// is read-only aggregation pushed down to the store.
type EventRepository interface {
	// Append inserts exactly one row and returns its store-assigned id.
	Append(event *Event) (int64, error)

	// FindByType returns the most recent events of one type, newest first.
	FindByType(eventType string, limit int) ([]*Event, error)

	// CountByType returns the total number of events of one type.
	CountByType(eventType string) (int, error)

	// ViewsByDay counts page_view events per UTC calendar day, newest first.
	ViewsByDay(limit int) ([]DayCount, error)

	// DatesClicked counts weather_search events per requested forecast date.
	DatesClicked(limit int) ([]DateCount, error)

	// RetentionCounts returns distinct visitors and how many of them were
	// seen on more than one calendar day.
	RetentionCounts() (total, returning int, err error)

	// D1Pairs returns, over all (client, day) pairs with day strictly
	// before today, the pair count and how many had activity on day+1.
	D1Pairs(today string) (pairs, retained int, err error)

	// TopLinks counts link_click events per non-empty link URL.
	TopLinks(limit int) ([]LinkCount, error)

	// ErrorsByCode counts error events per code, absent codes as "unknown".
	ErrorsByCode() ([]CodeCount, error)

	// RecentErrors returns the latest error events, newest first.
	RecentErrors(limit int) ([]RecentError, error)

	// PageLoadStats returns sample count, mean and maximum of load_ms over
	// page_perf events that carry a sample.
	PageLoadStats() (samples int, avgMs, maxMs float64, err error)

	// PageLoadValueAt returns the load_ms sample at the given rank of the
	// ascending-sorted sample set (0-indexed nearest-rank lookup).
	PageLoadValueAt(rank int) (float64, error)

	// EnteredCities counts weather_search events per entered city.
	EnteredCities(limit int) ([]CityCount, error)

	// Countries counts weather_search events per resolved country, absent
	// countries as "Unknown".
	Countries(limit int) ([]CountryCount, error)
}
