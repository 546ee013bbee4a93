package airquality

import (
	"github.com/greenroute/greenroute/internal/geo"
)

// InterpolatorConfig holds configuration for the nearest-station lookup.
type InterpolatorConfig struct {
	// TieEpsilon is the distance band (meters) within which two stations
	// count as equidistant; ties resolve to the lower station ID so
	// repeated lookups are reproducible. Default: 1.
	TieEpsilon float64
}

// DefaultInterpolatorConfig returns the default configuration.
func DefaultInterpolatorConfig() InterpolatorConfig {
	return InterpolatorConfig{TieEpsilon: 1}
}

// Interpolator estimates AQI at arbitrary coordinates from a sparse station
// snapshot. It is nearest-neighbor only: no IDW or kriging smoothing, traded
// away for predictability with the handful of stations a city typically has.
type Interpolator struct {
	config InterpolatorConfig
}

// NewInterpolator creates an Interpolator with the given configuration.
func NewInterpolator(config InterpolatorConfig) *Interpolator {
	if config.TieEpsilon <= 0 {
		config.TieEpsilon = DefaultInterpolatorConfig().TieEpsilon
	}
	return &Interpolator{config: config}
}

// NearestAQI returns the AQI of the station nearest to the coordinate.
// Returns ErrNoStationData when the snapshot is empty.
func (i *Interpolator) NearestAQI(c geo.Coordinate, snapshot *Snapshot) (float64, error) {
	r, _, err := i.NearestStation(c, snapshot)
	if err != nil {
		return 0, err
	}
	return r.AQI, nil
}

// NearestStation returns the reading of the nearest station and its distance
// in meters. Readings are scanned in station-ID order, so with the
// strict-improvement test an equidistant pair (within TieEpsilon) resolves
// to the lower station ID.
func (i *Interpolator) NearestStation(c geo.Coordinate, snapshot *Snapshot) (StationReading, float64, error) {
	if snapshot == nil || snapshot.Len() == 0 {
		return StationReading{}, 0, ErrNoStationData
	}

	var best StationReading
	bestDist := -1.0
	for _, r := range snapshot.Readings() {
		d := geo.Distance(c, geo.Coordinate{Lat: r.Lat, Lon: r.Lon})
		if bestDist < 0 || d < bestDist-i.config.TieEpsilon {
			best = r
			bestDist = d
		}
	}
	return best, bestDist, nil
}
