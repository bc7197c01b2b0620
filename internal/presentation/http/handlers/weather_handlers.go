package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/domain/weather"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

// WeatherHandlers handles the forecast lookup endpoint.
type WeatherHandlers struct {
	weatherService *services.WeatherService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewWeatherHandlers creates weather handlers with dependencies.
func NewWeatherHandlers(weatherService *services.WeatherService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *WeatherHandlers {
	return &WeatherHandlers{
		weatherService: weatherService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetWeather handles GET /api/weather?city=&date=.
func (h *WeatherHandlers) GetWeather(c *gin.Context) {
	marker := h.perfTracker.StartOperation("handle_get_weather")
	defer marker.Complete()

	req := services.WeatherRequest{
		City:      c.Query("city"),
		Date:      c.Query("date"),
		Purpose:   c.Query("purpose"),
		ClientID:  c.Query("clientId"),
		SessionID: c.Query("sessionId"),
		Path:      c.Query("path"),
	}

	report, err := h.weatherService.Lookup(c.Request.Context(), req)
	if err != nil {
		var validationErr *weather.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, report)
}
