package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/domain/weather"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

const forecastHorizonDays = 15

// WeatherRequest carries the lookup input plus the optional tracking
// context forwarded from the page.
type WeatherRequest struct {
	City      string
	Date      string
	Purpose   string
	ClientID  string
	SessionID string
	Path      string
}

// WeatherService resolves a city to coordinates, fetches the daily
// forecast for the requested date, and records the search in the
// event log. Tracking is best effort and never fails the lookup.
type WeatherService struct {
	geocoder    weather.Geocoder
	forecasts   weather.ForecastProvider
	tracking    *TrackingService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	now func() time.Time
}

// NewWeatherService creates a new weather lookup service.
func NewWeatherService(geocoder weather.Geocoder, forecasts weather.ForecastProvider, tracking *TrackingService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *WeatherService {
	return &WeatherService{
		geocoder:    geocoder,
		forecasts:   forecasts,
		tracking:    tracking,
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// Lookup validates the request, resolves the forecast, and tracks the
// outcome. Validation failures return *weather.ValidationError.
func (s *WeatherService) Lookup(ctx context.Context, req WeatherRequest) (*weather.Report, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("weather_lookup")
	defer marker.Complete()

	city := strings.TrimSpace(req.City)
	rawDate := strings.TrimSpace(req.Date)

	if city == "" {
		return nil, &weather.ValidationError{Message: "Укажите город в параметре city"}
	}
	if rawDate == "" {
		return nil, &weather.ValidationError{Message: "Укажите дату в параметре date"}
	}

	selected, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
	if err != nil {
		return nil, &weather.ValidationError{Message: "Неверный формат даты. Используйте YYYY-MM-DD"}
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	maxSupported := today.AddDate(0, 0, forecastHorizonDays)
	if selected.Before(today) || selected.After(maxSupported) {
		return nil, &weather.ValidationError{
			Message: fmt.Sprintf("Можно выбрать дату только с %s по %s",
				today.Format("2006-01-02"), maxSupported.Format("2006-01-02")),
		}
	}

	location, err := s.geocoder.Locate(ctx, city)
	if err != nil {
		s.logger.Weather().Warn("Geocode failed", "city", city, "error", err.Error())
		s.trackError(req, city, "geocode_failed", err)
		return nil, err
	}

	forecast, err := s.forecasts.DailyForecast(ctx, location.Lat, location.Lon, rawDate)
	if err != nil {
		s.logger.Weather().Warn("Forecast fetch failed", "city", city, "error", err.Error())
		s.trackError(req, city, "forecast_failed", err)
		return nil, err
	}

	s.trackSearch(req, city, rawDate, location)
	marker.SetSuccess(true)

	s.logger.Weather().Info("Weather lookup completed",
		"city", city,
		"date", rawDate,
		"country", location.Country,
		"duration", time.Since(start))

	return &weather.Report{
		City:         city,
		Date:         rawDate,
		TempMin:      forecast.TempMin,
		TempMax:      forecast.TempMax,
		FeelsLikeMin: forecast.FeelsLikeMin,
		FeelsLikeMax: forecast.FeelsLikeMax,
		WeatherCode:  forecast.WeatherCode,
	}, nil
}

func (s *WeatherService) trackSearch(req WeatherRequest, city, targetDate string, location *weather.Location) {
	if s.tracking == nil {
		return
	}
	_, err := s.tracking.Track(&TrackRequest{
		EventType:    analytics.EventWeatherSearch,
		ClientID:     req.ClientID,
		SessionID:    req.SessionID,
		Path:         req.Path,
		CityInput:    city,
		CityResolved: location.ResolvedCity,
		Country:      location.Country,
		CountryCode:  location.CountryCode,
		TargetDate:   targetDate,
		Purpose:      req.Purpose,
	})
	if err != nil {
		s.logger.Weather().Warn("Search tracking failed", "error", err.Error())
	}
}

func (s *WeatherService) trackError(req WeatherRequest, city, code string, cause error) {
	if s.tracking == nil {
		return
	}
	_, err := s.tracking.Track(&TrackRequest{
		EventType:    analytics.EventError,
		ClientID:     req.ClientID,
		SessionID:    req.SessionID,
		Path:         req.Path,
		CityInput:    city,
		ErrorCode:    code,
		ErrorMessage: cause.Error(),
	})
	if err != nil {
		s.logger.Weather().Warn("Error tracking failed", "error", err.Error())
	}
}
