package raster

import (
	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/geo"
)

// SamplerConfig holds configuration for the raster sampler.
type SamplerConfig struct {
	// LineSamples is the number of evenly spaced points sampled along a
	// line geometry (default: 5, minimum: 2). A single endpoint lookup
	// misrepresents segments crossing heterogeneous terrain.
	LineSamples int

	// Bilinear switches point lookups from nearest-pixel to bilinear
	// interpolation over the four surrounding cells. Nodata cells drop out
	// of the interpolation instead of poisoning it.
	Bilinear bool

	// Logger for sampler operations.
	Logger zerolog.Logger
}

// Sampler answers point and line greenness queries against a grid.
// It is read-only over the grid and safe for concurrent use.
type Sampler struct {
	grid        *Grid
	lineSamples int
	lookup      func(geo.Coordinate) (float64, error)
	logger      zerolog.Logger
}

// NewSampler creates a Sampler over the given grid.
func NewSampler(grid *Grid, cfg SamplerConfig) *Sampler {
	lineSamples := cfg.LineSamples
	if lineSamples < 2 {
		lineSamples = 5
	}
	lookup := grid.ValueAt
	if cfg.Bilinear {
		lookup = grid.BilinearValueAt
	}
	return &Sampler{
		grid:        grid,
		lineSamples: lineSamples,
		lookup:      lookup,
		logger:      cfg.Logger,
	}
}

// SamplePoint returns the greenness value under the coordinate.
// Returns ErrOutOfBounds when the coordinate is outside the raster extent.
func (s *Sampler) SamplePoint(c geo.Coordinate) (float64, error) {
	return s.lookup(c)
}

// SampleLine samples the grid at evenly spaced points along the line and
// returns the arithmetic mean of the in-bounds values. Only when every
// sample misses the raster does it return ErrOutOfBounds.
func (s *Sampler) SampleLine(line geo.LineString) (float64, error) {
	if len(line) == 0 {
		return 0, ErrOutOfBounds
	}

	points := line.SamplePoints(s.lineSamples)
	var sum float64
	var hits int
	for _, p := range points {
		v, err := s.lookup(p)
		if err != nil {
			continue
		}
		sum += v
		hits++
	}

	if hits == 0 {
		return 0, ErrOutOfBounds
	}
	if hits < len(points) {
		s.logger.Debug().
			Int("samples", len(points)).
			Int("hits", hits).
			Msg("partial raster coverage along line")
	}
	return sum / float64(hits), nil
}
