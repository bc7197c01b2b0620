package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/domain/weather"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
	"github.com/pogoda-app/pogoda-go/internal/presentation/http/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	repo   analytics.EventRepository
}

type stubGeocoder struct {
	location *weather.Location
	err      error
}

func (s *stubGeocoder) Locate(ctx context.Context, city string) (*weather.Location, error) {
	return s.location, s.err
}

type stubForecaster struct {
	forecast *weather.Forecast
	err      error
}

func (s *stubForecaster) DailyForecast(ctx context.Context, lat, lon, date string) (*weather.Forecast, error) {
	return s.forecast, s.err
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewTableCreator().CreateSchema(db.DB))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{})
	require.NoError(t, err)
	perfTracker := performance.NewTracker(100)

	repo := analyticsrepo.NewSQLEventRepository(db, logger)
	trackingService := services.NewTrackingService(repo, logger, perfTracker)
	dashboardService := services.NewDashboardService(repo, logger, perfTracker)
	authService := services.NewAuthService(services.AuthConfig{
		Password:   "letmein",
		CookieName: "pogoda_dash",
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
	}, logger)
	geocoder := &stubGeocoder{location: &weather.Location{
		Lat:          "55.75",
		Lon:          "37.61",
		ResolvedCity: "Москва, Россия",
		Country:      "Россия",
		CountryCode:  "ru",
	}}
	tempMin := 10.5
	forecaster := &stubForecaster{forecast: &weather.Forecast{TempMin: &tempMin}}
	weatherService := services.NewWeatherService(geocoder, forecaster, trackingService, logger, perfTracker)

	trackHandlers := handlers.NewTrackHandlers(trackingService, logger, perfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(dashboardService, logger, perfTracker)
	authHandlers := handlers.NewAuthHandlers(authService, logger, perfTracker)
	weatherHandlers := handlers.NewWeatherHandlers(weatherService, logger, perfTracker)
	healthHandlers := handlers.NewHealthHandlers(db, perfTracker)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/health", healthHandlers.GetHealth)
		api.GET("/weather", weatherHandlers.GetWeather)
		api.POST("/track", trackHandlers.PostTrack)
		api.POST("/analytics-login", authHandlers.PostLogin)
		api.POST("/analytics-logout", authHandlers.PostLogout)
		api.GET("/analytics", authHandlers.AuthMiddleware(), analyticsHandlers.GetAnalytics)
	}

	return &testEnv{router: router, repo: repo}
}

func (e *testEnv) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestPostTrackAcceptsEvent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/track", `{"eventType":"page_view","clientId":"c-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	count, err := env.repo.CountByType(analytics.EventPageView)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostTrackRejectsMissingEventType(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/track", `{"clientId":"c-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"eventType is required"}`, w.Body.String())
}

func TestPostTrackRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/track", `{"eventType":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/analytics-login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Неверный пароль"}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/analytics-login", `{"password":"letmein"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "pogoda_dash", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}

func TestAnalyticsRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/analytics", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/analytics", "", &http.Cookie{Name: "pogoda_dash", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalyticsReturnsSnapshotForSession(t *testing.T) {
	env := newTestEnv(t)

	login := env.do(http.MethodPost, "/api/analytics-login", `{"password":"letmein"}`)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)

	w := env.do(http.MethodGet, "/api/analytics", "", cookies[0])
	assert.Equal(t, http.StatusOK, w.Code)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	for _, key := range []string{"viewsByDay", "datesClicked", "retention", "linkClicks", "errors", "pageLoad", "searchGeo"} {
		assert.Contains(t, payload, key)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/analytics-logout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "pogoda_dash", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestGetWeatherValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/weather?date=2026-08-30", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Укажите город в параметре city"}`, w.Body.String())
}

func TestGetWeatherReturnsReport(t *testing.T) {
	env := newTestEnv(t)

	date := time.Now().UTC().Format("2006-01-02")
	w := env.do(http.MethodGet, "/api/weather?city=Москва&date="+date, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var report map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Москва", report["city"])
	assert.Equal(t, date, report["date"])
	assert.Equal(t, 10.5, report["tempMin"])

	count, err := env.repo.CountByType(analytics.EventWeatherSearch)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetHealthReportsStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}
