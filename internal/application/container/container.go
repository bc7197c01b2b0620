// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/forecast"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/geo"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
	"github.com/pogoda-app/pogoda-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services (stateless singletons)
	TrackingService  *services.TrackingService
	DashboardService *services.DashboardService
	AuthService      *services.AuthService
	WeatherService   *services.WeatherService

	// Repositories
	EventRepo analytics.EventRepository

	// Infrastructure Dependencies
	DB          *database.DB
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(db *database.DB, logger *logging.ChanneledLogger, authConfig services.AuthConfig) *Container {
	perfTracker := performance.NewTracker(0)
	eventRepo := analyticsrepo.NewSQLEventRepository(db, logger)

	geocoder := geo.NewNominatimClient(config.GeocoderBaseURL, config.GeocoderLanguage, config.UpstreamTimeout, logger)
	forecasts := forecast.NewOpenMeteoClient(config.ForecastBaseURL, config.UpstreamTimeout, logger)

	trackingService := services.NewTrackingService(eventRepo, logger, perfTracker)

	return &Container{
		TrackingService:  trackingService,
		DashboardService: services.NewDashboardService(eventRepo, logger, perfTracker),
		AuthService:      services.NewAuthService(authConfig, logger),
		WeatherService:   services.NewWeatherService(geocoder, forecasts, trackingService, logger, perfTracker),

		EventRepo: eventRepo,

		DB:          db,
		Logger:      logger,
		PerfTracker: perfTracker,
	}
}
