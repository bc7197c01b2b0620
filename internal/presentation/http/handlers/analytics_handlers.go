package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

// AnalyticsHandlers handles dashboard analytics endpoints.
type AnalyticsHandlers struct {
	dashboardService *services.DashboardService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with dependencies.
func NewAnalyticsHandlers(dashboardService *services.DashboardService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		dashboardService: dashboardService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetAnalytics handles GET /api/analytics. The route is guarded by the
// session cookie middleware.
func (h *AnalyticsHandlers) GetAnalytics(c *gin.Context) {
	marker := h.perfTracker.StartOperation("handle_get_analytics")
	defer marker.Complete()

	snapshot, err := h.dashboardService.ComputeSnapshot()
	if err != nil {
		h.logger.Analytics().Error("Failed to compute dashboard snapshot", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, snapshot)
}
