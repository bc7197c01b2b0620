// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/application/container"
	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/security"
	"github.com/pogoda-app/pogoda-go/internal/presentation/http/server"
	"github.com/pogoda-app/pogoda-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	// Step 1: Create the channeled logger
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	logger.Startup().Info("Starting pogoda-go")

	// Step 2: Open the event store and ensure the schema exists
	logger.Startup().Info("Opening event store...",
		"driver", config.DBDriver)

	db, err := database.NewConnectionWithLogger(config.DBDriver, databaseDSN(), logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tableCreator := database.NewTableCreator()
	if err := tableCreator.CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Startup().Info("Event store ready")

	// Step 3: Resolve dashboard access settings
	sessionSecret := config.SessionSecret
	if sessionSecret == "" {
		sessionSecret, err = security.GenerateSecureKey(32)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		logger.Startup().Warn("SESSION_SECRET not set, generated an ephemeral secret; dashboard sessions will not survive restarts")
	}
	if config.DashboardPassword == "" {
		logger.Startup().Warn("DASHBOARD_PASSWORD not set, dashboard login is disabled")
	}

	authConfig := services.AuthConfig{
		Password:   config.DashboardPassword,
		CookieName: config.SessionCookieName,
		JWTSecret:  sessionSecret,
		SessionTTL: config.SessionTTL,
	}

	// Step 4: Create dependency injection container
	appContainer := container.NewContainer(db, logger, authConfig)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 5: Start HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// databaseDSN selects the data source for the configured driver. The
// libsql driver takes a URL; sqlite3 takes a file path.
func databaseDSN() string {
	if config.DBDriver == "libsql" && config.DBURL != "" {
		return config.DBURL
	}
	return config.DBPath
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
