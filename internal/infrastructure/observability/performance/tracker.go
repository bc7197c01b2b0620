// Package performance provides lightweight performance tracking for
// request-scoped operations.
package performance

import (
	"sync"
	"time"
)

// Marker tracks a single operation from start to completion.
type Marker struct {
	Operation string        `json:"operation"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`

	completed bool
	mu        sync.Mutex
}

// Complete finalizes the marker and records its duration. Safe to call
// from a defer; only the first call takes effect.
func (m *Marker) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.completed {
		return
	}
	m.completed = true
	m.Duration = time.Since(m.StartTime)
}

// SetSuccess records whether the operation succeeded.
func (m *Marker) SetSuccess(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Success = success
}

// Tracker retains a bounded window of recent operation markers.
type Tracker struct {
	markers    []*Marker
	maxMarkers int
	started    time.Time
	mu         sync.RWMutex
}

// NewTracker creates a performance tracker retaining up to maxMarkers
// recent markers; zero or negative means the default of 1000.
func NewTracker(maxMarkers int) *Tracker {
	if maxMarkers <= 0 {
		maxMarkers = 1000
	}
	return &Tracker{
		markers:    make([]*Marker, 0, maxMarkers),
		maxMarkers: maxMarkers,
		started:    time.Now(),
	}
}

// StartOperation creates and tracks a new performance marker.
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Success:   true, // assume success until proven otherwise
	}

	t.mu.Lock()
	if len(t.markers) >= t.maxMarkers {
		// Drop the oldest half rather than shifting on every insert.
		keep := t.maxMarkers / 2
		t.markers = append(t.markers[:0], t.markers[len(t.markers)-keep:]...)
	}
	t.markers = append(t.markers, marker)
	t.mu.Unlock()

	return marker
}

// Stats summarizes the tracked window.
type Stats struct {
	Uptime          time.Duration `json:"uptime"`
	TrackedOps      int           `json:"trackedOps"`
	FailedOps       int           `json:"failedOps"`
	AvgDuration     time.Duration `json:"avgDuration"`
	SlowestOp       string        `json:"slowestOp,omitempty"`
	SlowestDuration time.Duration `json:"slowestDuration"`
}

// GetStats computes summary statistics over completed markers.
func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{Uptime: time.Since(t.started)}

	var total time.Duration
	var completed int
	for _, m := range t.markers {
		m.mu.Lock()
		done, dur, ok, op := m.completed, m.Duration, m.Success, m.Operation
		m.mu.Unlock()

		if !done {
			continue
		}
		completed++
		total += dur
		if !ok {
			stats.FailedOps++
		}
		if dur > stats.SlowestDuration {
			stats.SlowestDuration = dur
			stats.SlowestOp = op
		}
	}

	stats.TrackedOps = completed
	if completed > 0 {
		stats.AvgDuration = total / time.Duration(completed)
	}
	return stats
}
