// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/application/container"
	"github.com/pogoda-app/pogoda-go/internal/presentation/http/handlers"
	"github.com/pogoda-app/pogoda-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Serve the weather page and its dashboard from web/.
	r.StaticFile("/", "web/index.html")
	r.StaticFile("/index.html", "web/index.html")
	r.StaticFile("/analytics.html", "web/analytics.html")
	r.Static("/static", "web/static")

	trackHandlers := handlers.NewTrackHandlers(c.TrackingService, c.Logger, c.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(c.DashboardService, c.Logger, c.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker)
	weatherHandlers := handlers.NewWeatherHandlers(c.WeatherService, c.Logger, c.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(c.DB, c.PerfTracker)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandlers.GetHealth)
		api.GET("/weather", weatherHandlers.GetWeather)
		api.POST("/track", trackHandlers.PostTrack)
		api.POST("/analytics-login", authHandlers.PostLogin)
		api.POST("/analytics-logout", authHandlers.PostLogout)

		guarded := api.Group("")
		guarded.Use(authHandlers.AuthMiddleware())
		{
			guarded.GET("/analytics", analyticsHandlers.GetAnalytics)
		}
	}

	return r
}
