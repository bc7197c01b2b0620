// Package services provides application-level orchestration services
package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

// TrackRequest is the typed tracking payload accepted by POST /api/track.
// Every field except EventType is optional; string fields are trimmed and
// empty strings are treated as absent.
type TrackRequest struct {
	EventType    string          `json:"eventType"`
	ClientID     string          `json:"clientId"`
	SessionID    string          `json:"sessionId"`
	Path         string          `json:"path"`
	CityInput    string          `json:"cityInput"`
	CityResolved string          `json:"cityResolved"`
	Country      string          `json:"country"`
	CountryCode  string          `json:"countryCode"`
	TargetDate   string          `json:"targetDate"`
	Purpose      string          `json:"purpose"`
	LinkURL      string          `json:"linkUrl"`
	ErrorCode    string          `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
	LoadMs       *float64        `json:"loadMs"`
	Meta         json.RawMessage `json:"meta"`
}

// TrackingService validates and normalizes tracking payloads and appends
// exactly one event row per accepted call.
type TrackingService struct {
	eventRepo   analytics.EventRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTrackingService creates a new tracking service.
func NewTrackingService(eventRepo analytics.EventRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TrackingService {
	return &TrackingService{
		eventRepo:   eventRepo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Track validates the payload and persists it as one event row. Returns
// analytics.ErrEventTypeRequired when the event type is empty after
// trimming; storage failures propagate unchanged.
func (s *TrackingService) Track(req *TrackRequest) (int64, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("track_event")
	defer marker.Complete()

	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		s.logger.Ingest().Warn("Rejected tracking payload without event type")
		marker.SetSuccess(false)
		return 0, analytics.ErrEventTypeRequired
	}

	event := &analytics.Event{
		EventType:    eventType,
		ClientID:     optional(req.ClientID),
		SessionID:    optional(req.SessionID),
		Path:         optional(req.Path),
		CityInput:    optional(req.CityInput),
		CityResolved: optional(req.CityResolved),
		Country:      optional(req.Country),
		CountryCode:  optional(req.CountryCode),
		TargetDate:   optional(req.TargetDate),
		Purpose:      optional(req.Purpose),
		LinkURL:      optional(req.LinkURL),
		ErrorCode:    optional(req.ErrorCode),
		ErrorMessage: optional(req.ErrorMessage),
		LoadMs:       req.LoadMs,
		Meta:         rawMeta(req.Meta),
	}

	id, err := s.eventRepo.Append(event)
	if err != nil {
		s.logger.Ingest().Error("Failed to persist tracking event",
			"eventType", eventType,
			"error", err.Error(),
			"duration", time.Since(start))
		marker.SetSuccess(false)
		return 0, err
	}

	s.logger.Ingest().Debug("Tracking event persisted",
		"eventId", id,
		"eventType", eventType,
		"duration", time.Since(start))
	marker.SetSuccess(true)
	return id, nil
}

// optional trims a client-supplied string and maps empty to absent.
func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// rawMeta keeps the meta payload as an opaque serialized blob.
func rawMeta(meta json.RawMessage) *string {
	if len(meta) == 0 {
		return nil
	}
	blob := strings.TrimSpace(string(meta))
	if blob == "" || blob == "null" {
		return nil
	}
	return &blob
}
