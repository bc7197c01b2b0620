package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/persistence/database"
)

// HealthHandlers handles liveness and status endpoints.
type HealthHandlers struct {
	db          *database.DB
	perfTracker *performance.Tracker
}

// NewHealthHandlers creates health handlers with dependencies.
func NewHealthHandlers(db *database.DB, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{
		db:          db,
		perfTracker: perfTracker,
	}
}

// GetHealth handles GET /api/health.
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	stats := h.perfTracker.GetStats()
	c.JSON(status, gin.H{
		"status":   dbStatus,
		"uptime":   stats.Uptime.String(),
		"tracked":  stats.TrackedOps,
		"failed":   stats.FailedOps,
		"slowest":  stats.SlowestOp,
		"duration": stats.SlowestDuration.String(),
	})
}
