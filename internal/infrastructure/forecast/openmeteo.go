// Package forecast provides the Open-Meteo forecast client.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pogoda-app/pogoda-go/internal/domain/weather"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
)

// dailyVariables are the per-day series requested from the forecast API.
const dailyVariables = "temperature_2m_min,temperature_2m_max," +
	"apparent_temperature_min,apparent_temperature_max,weather_code"

// ErrBadForecastPayload is returned when the response carries no daily block.
var ErrBadForecastPayload = errors.New("Некорректный ответ Open-Meteo")

// OpenMeteoClient fetches daily forecasts from the Open-Meteo API.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	logger  *logging.ChanneledLogger
}

// NewOpenMeteoClient creates a forecast client against the given base URL.
func NewOpenMeteoClient(baseURL string, timeout time.Duration, logger *logging.ChanneledLogger) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type openMeteoResponse struct {
	Daily *struct {
		TemperatureMin  []float64 `json:"temperature_2m_min"`
		TemperatureMax  []float64 `json:"temperature_2m_max"`
		ApparentTempMin []float64 `json:"apparent_temperature_min"`
		ApparentTempMax []float64 `json:"apparent_temperature_max"`
		WeatherCode     []int     `json:"weather_code"`
	} `json:"daily"`
}

// DailyForecast fetches the forecast for one coordinate and ISO date.
func (c *OpenMeteoClient) DailyForecast(ctx context.Context, lat, lon, date string) (*weather.Forecast, error) {
	params := url.Values{}
	params.Set("latitude", lat)
	params.Set("longitude", lon)
	params.Set("daily", dailyVariables)
	params.Set("start_date", date)
	params.Set("end_date", date)
	params.Set("timezone", "auto")

	endpoint := c.baseURL + "/v1/forecast?" + params.Encode()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Weather().Error("Forecast request failed", "error", err.Error(), "lat", lat, "lon", lon, "date", date)
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Weather().Error("Forecast API returned non-200 status", "status", resp.StatusCode, "date", date)
		return nil, fmt.Errorf("forecast API returned status %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	if payload.Daily == nil {
		return nil, ErrBadForecastPayload
	}

	c.logger.Weather().Debug("Forecast completed", "lat", lat, "lon", lon, "date", date, "duration", time.Since(start))

	return &weather.Forecast{
		TempMin:      firstFloat(payload.Daily.TemperatureMin),
		TempMax:      firstFloat(payload.Daily.TemperatureMax),
		FeelsLikeMin: firstFloat(payload.Daily.ApparentTempMin),
		FeelsLikeMax: firstFloat(payload.Daily.ApparentTempMax),
		WeatherCode:  firstInt(payload.Daily.WeatherCode),
	}, nil
}

func firstFloat(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func firstInt(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
