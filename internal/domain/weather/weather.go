// Package weather defines the interfaces for the upstream geocoding and
// forecast collaborators, plus the report returned to the page.
package weather

import "context"

// Location is the result of resolving a free-text city name.
type Location struct {
	Lat          string
	Lon          string
	ResolvedCity string
	Country      string
	CountryCode  string
}

// Forecast is a single day forecast. Fields are pointers because the
// upstream may omit any of them for a given day.
type Forecast struct {
	TempMin      *float64
	TempMax      *float64
	FeelsLikeMin *float64
	FeelsLikeMax *float64
	WeatherCode  *int
}

// Report is the payload returned for GET /api/weather.
type Report struct {
	City         string   `json:"city"`
	Date         string   `json:"date"`
	TempMin      *float64 `json:"tempMin"`
	TempMax      *float64 `json:"tempMax"`
	FeelsLikeMin *float64 `json:"feelsLikeMin"`
	FeelsLikeMax *float64 `json:"feelsLikeMax"`
	WeatherCode  *int     `json:"weatherCode"`
}

// Geocoder resolves a free-text city name to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, city string) (*Location, error)
}

// ForecastProvider returns the daily forecast for one coordinate and date.
type ForecastProvider interface {
	DailyForecast(ctx context.Context, lat, lon, date string) (*Forecast, error)
}

// ValidationError marks user input problems that map to a 400 response.
// The message is shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
