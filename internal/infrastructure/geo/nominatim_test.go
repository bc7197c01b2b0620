package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *NominatimClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{})
	require.NoError(t, err)

	return NewNominatimClient(server.URL, "ru", time.Second, logger)
}

func TestLocateResolvesCity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Москва", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "pogoda-go/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "ru", r.Header.Get("Accept-Language"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"lat": "55.7504461",
			"lon": "37.6174943",
			"display_name": "Москва, Центральный федеральный округ, Россия",
			"address": {"country": "Россия", "country_code": "ru"}
		}]`))
	})

	location, err := client.Locate(context.Background(), "Москва")
	require.NoError(t, err)

	assert.Equal(t, "55.7504461", location.Lat)
	assert.Equal(t, "37.6174943", location.Lon)
	assert.Equal(t, "Москва, Центральный федеральный округ, Россия", location.ResolvedCity)
	assert.Equal(t, "Россия", location.Country)
	assert.Equal(t, "ru", location.CountryCode)
}

func TestLocateReturnsNotFoundForEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	_, err := client.Locate(context.Background(), "Нигделандия")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestLocateFailsOnUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Locate(context.Background(), "Москва")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
