// Package geo provides the Nominatim-backed geocoder client.
package geo

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

const userAgent = "pogoda-go/1.0"

// ErrCityNotFound is returned when the geocoder has no match for the city.
var ErrCityNotFound = errors.New("Город не найден")

// NominatimClient resolves free-text city names via the Nominatim search API.
type NominatimClient struct {
	baseURL  string
	language string
	client   *http.Client
	logger   *logging.ChanneledLogger
}

// NewNominatimClient creates a geocoder client against the given base URL.
func NewNominatimClient(baseURL, language string, timeout time.Duration, logger *logging.ChanneledLogger) *NominatimClient {
	return &NominatimClient{
		baseURL:  baseURL,
		language: language,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// nominatimResult is the subset of the search response we consume.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Locate resolves a city name to coordinates plus country metadata.
func (c *NominatimClient) Locate(ctx context.Context, city string) (*weather.Location, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	endpoint := c.baseURL + "/search?" + params.Encode()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", c.language)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Weather().Error("Geocode request failed", "error", err.Error(), "city", city)
		return nil, fmt.Errorf("failed to geocode city: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Weather().Error("Geocoder returned non-200 status", "status", resp.StatusCode, "city", city)
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if len(results) == 0 {
		c.logger.Weather().Info("Geocoder found no match", "city", city, "duration", time.Since(start))
		return nil, ErrCityNotFound
	}

	first := results[0]
	c.logger.Weather().Debug("Geocode completed",
		"city", city,
		"lat", first.Lat,
		"lon", first.Lon,
		"country", first.Address.Country,
		"duration", time.Since(start))

	return &weather.Location{
		Lat:          first.Lat,
		Lon:          first.Lon,
		ResolvedCity: first.DisplayName,
		Country:      first.Address.Country,
		CountryCode:  first.Address.CountryCode,
	}, nil
}
