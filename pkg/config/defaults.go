// Package config provides centralized default values for pogoda-go
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvSecret(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=**** (from environment)", key)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver string
	DBPath   string
	DBURL    string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Query diagnostics
	SlowQueryThreshold time.Duration

	// Dashboard access
	DashboardPassword string
	SessionCookieName string
	SessionSecret     string
	SessionTTL        time.Duration

	// Upstream weather collaborators
	GeocoderBaseURL  string
	ForecastBaseURL  string
	UpstreamTimeout  time.Duration
	GeocoderLanguage string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database Configuration
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "pogoda.db")
	DBURL = getEnvString("DB_URL", "")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Query diagnostics
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Dashboard access
	DashboardPassword = getEnvSecret("DASHBOARD_PASSWORD", "")
	SessionCookieName = getEnvString("SESSION_COOKIE_NAME", "pogoda_dash")
	SessionSecret = getEnvSecret("SESSION_SECRET", "")
	SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)

	// Upstream weather collaborators
	GeocoderBaseURL = getEnvString("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	ForecastBaseURL = getEnvString("FORECAST_BASE_URL", "https://api.open-meteo.com")
	UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second)
	GeocoderLanguage = getEnvString("GEOCODER_LANGUAGE", "ru")
}
