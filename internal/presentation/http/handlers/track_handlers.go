// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pogoda-app/pogoda-go/internal/application/services"
	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

// TrackHandlers handles event ingestion endpoints.
type TrackHandlers struct {
	trackingService *services.TrackingService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewTrackHandlers creates track handlers with dependencies.
func NewTrackHandlers(trackingService *services.TrackingService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TrackHandlers {
	return &TrackHandlers{
		trackingService: trackingService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// PostTrack handles POST /api/track.
func (h *TrackHandlers) PostTrack(c *gin.Context) {
	marker := h.perfTracker.StartOperation("handle_post_track")
	defer marker.Complete()

	var req services.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	if _, err := h.trackingService.Track(&req); err != nil {
		if errors.Is(err, analytics.ErrEventTypeRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "eventType is required"})
			return
		}
		h.logger.Ingest().Error("Failed to store event", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
