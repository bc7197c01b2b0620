package services

import (
	"math"
	"time"

	"github.com/pogoda-app/pogoda-go/internal/domain/analytics"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/performance"
)

// Aggregation windows and list sizes for the dashboard snapshot.
const (
	viewsByDayWindow  = 30
	topListLimit      = 20
	recentErrorsLimit = 10
)

// DashboardService computes the analytics snapshot as a pure read-only
// function of the current event log. UTC is the sole time reference.
type DashboardService struct {
	eventRepo   analytics.EventRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	// now is swappable for deterministic retention tests.
	now func() time.Time
}

// NewDashboardService creates a new dashboard aggregation service.
func NewDashboardService(eventRepo analytics.EventRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DashboardService {
	return &DashboardService{
		eventRepo:   eventRepo,
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// ComputeSnapshot assembles the full dashboard payload. Store errors
// propagate unchanged; the caller maps them to the request boundary.
func (s *DashboardService) ComputeSnapshot() (*analytics.Snapshot, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("compute_snapshot")
	defer marker.Complete()

	viewsByDay, err := s.eventRepo.ViewsByDay(viewsByDayWindow)
	if err != nil {
		return nil, err
	}

	datesClicked, err := s.eventRepo.DatesClicked(topListLimit)
	if err != nil {
		return nil, err
	}

	retention, err := s.computeRetention()
	if err != nil {
		return nil, err
	}

	linkClicks, err := s.computeLinkClicks()
	if err != nil {
		return nil, err
	}

	errorsBlock, err := s.computeErrors()
	if err != nil {
		return nil, err
	}

	pageLoad, err := s.computePageLoad()
	if err != nil {
		return nil, err
	}

	searchGeo, err := s.computeSearchGeo()
	if err != nil {
		return nil, err
	}

	s.logger.Analytics().Info("Dashboard snapshot computed",
		"totalUsers", retention.TotalUsers,
		"duration", time.Since(start))
	marker.SetSuccess(true)

	return &analytics.Snapshot{
		ViewsByDay:   viewsByDay,
		DatesClicked: datesClicked,
		Retention:    *retention,
		LinkClicks:   *linkClicks,
		Errors:       *errorsBlock,
		PageLoad:     *pageLoad,
		SearchGeo:    *searchGeo,
	}, nil
}

func (s *DashboardService) computeRetention() (*analytics.Retention, error) {
	total, returning, err := s.eventRepo.RetentionCounts()
	if err != nil {
		return nil, err
	}

	retention := &analytics.Retention{
		TotalUsers:     total,
		ReturningUsers: returning,
	}
	if total > 0 {
		retention.ReturningRate = round2(float64(returning) / float64(total) * 100)
	}

	today := s.now().UTC().Format("2006-01-02")
	pairs, retained, err := s.eventRepo.D1Pairs(today)
	if err != nil {
		return nil, err
	}
	if pairs > 0 {
		retention.D1RetentionRate = round2(float64(retained) / float64(pairs) * 100)
	}

	return retention, nil
}

func (s *DashboardService) computeLinkClicks() (*analytics.LinkClicks, error) {
	total, err := s.eventRepo.CountByType(analytics.EventLinkClick)
	if err != nil {
		return nil, err
	}

	topLinks, err := s.eventRepo.TopLinks(topListLimit)
	if err != nil {
		return nil, err
	}

	return &analytics.LinkClicks{
		Total:    total,
		TopLinks: topLinks,
	}, nil
}

func (s *DashboardService) computeErrors() (*analytics.Errors, error) {
	total, err := s.eventRepo.CountByType(analytics.EventError)
	if err != nil {
		return nil, err
	}

	byCode, err := s.eventRepo.ErrorsByCode()
	if err != nil {
		return nil, err
	}

	recent, err := s.eventRepo.RecentErrors(recentErrorsLimit)
	if err != nil {
		return nil, err
	}

	return &analytics.Errors{
		Total:  total,
		ByCode: byCode,
		Recent: recent,
	}, nil
}

func (s *DashboardService) computePageLoad() (*analytics.PageLoad, error) {
	samples, avgMs, maxMs, err := s.eventRepo.PageLoadStats()
	if err != nil {
		return nil, err
	}

	pageLoad := &analytics.PageLoad{Samples: samples}
	if samples == 0 {
		return pageLoad, nil
	}

	// Nearest-rank p95: element at floor(0.95 * n) of the ascending sort.
	rank := int(math.Floor(0.95 * float64(samples)))
	p95, err := s.eventRepo.PageLoadValueAt(rank)
	if err != nil {
		return nil, err
	}

	pageLoad.AvgMs = round2(avgMs)
	pageLoad.MaxMs = round2(maxMs)
	pageLoad.P95Ms = round2(p95)
	return pageLoad, nil
}

func (s *DashboardService) computeSearchGeo() (*analytics.SearchGeo, error) {
	cities, err := s.eventRepo.EnteredCities(topListLimit)
	if err != nil {
		return nil, err
	}

	countries, err := s.eventRepo.Countries(topListLimit)
	if err != nil {
		return nil, err
	}

	return &analytics.SearchGeo{
		EnteredCities: cities,
		Countries:     countries,
	}, nil
}

// round2 rounds half away from zero to two decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
