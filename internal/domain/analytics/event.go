// Package analytics defines the analytics event model and the contracts
// for storing and aggregating events.
package analytics

import "errors"

// Event types accepted by the ingestion pipeline.
const (
	EventPageView      = "page_view"
	EventWeatherSearch = "weather_search"
	EventLinkClick     = "link_click"
	EventError         = "error"
	EventPagePerf      = "page_perf"
)

// ErrEventTypeRequired is returned when a tracking payload arrives without
// a usable eventType. Such payloads are rejected before any row is written.
var ErrEventTypeRequired = errors.New("eventType is required")

// Event is one row of the append-only event log. Rows are created once by
// the ingestor and never updated or deleted. ID and Timestamp are assigned
// by the store at append time; every other field is client-supplied.
// Optional fields use pointers so that "no value" maps to SQL NULL rather
// than an empty string, which matters for aggregation exclusion.
type Event struct {
	ID        int64
	Timestamp string
	EventType string

	ClientID     *string
	SessionID    *string
	Path         *string
	CityInput    *string
	CityResolved *string
	Country      *string
	CountryCode  *string
	TargetDate   *string
	Purpose      *string
	LinkURL      *string
	ErrorCode    *string
	ErrorMessage *string
	LoadMs       *float64

	// Meta is an opaque serialized blob. The aggregator never inspects it.
	Meta *string
}
