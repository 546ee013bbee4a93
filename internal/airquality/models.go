// Package airquality provides air quality station data and the
// nearest-station AQI lookup used during graph enrichment.
package airquality

import (
	"errors"
	"sort"
	"time"
)

// Provider errors.
var (
	// ErrNoStationData indicates the station set is empty; callers must
	// substitute a configured default AQI instead of aborting.
	ErrNoStationData = errors.New("no station data available")

	// ErrProviderUnavailable indicates the AQI provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
)

// StationReading is an immutable AQI observation from a fixed ground
// station. Readings are never mutated after ingestion; a new fetch replaces
// the whole snapshot.
type StationReading struct {
	StationID  string
	Name       string
	Lat        float64
	Lon        float64
	AQI        float64
	ObservedAt time.Time
}

// Snapshot is a point-in-time set of station readings. The reading slice is
// owned by the snapshot and sorted by station ID at construction so lookups
// are deterministic.
type Snapshot struct {
	readings  []StationReading
	FetchedAt time.Time
	Provider  string
}

// NewSnapshot creates a snapshot from the given readings. The input slice is
// copied; readings with negative AQI are dropped.
func NewSnapshot(provider string, readings []StationReading) *Snapshot {
	kept := make([]StationReading, 0, len(readings))
	for _, r := range readings {
		if r.AQI < 0 {
			continue
		}
		kept = append(kept, r)
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].StationID < kept[j].StationID
	})
	return &Snapshot{
		readings:  kept,
		FetchedAt: time.Now(),
		Provider:  provider,
	}
}

// Readings returns the snapshot's readings in station-ID order. Callers must
// not modify the returned slice.
func (s *Snapshot) Readings() []StationReading {
	return s.readings
}

// Len returns the number of readings in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.readings)
}
