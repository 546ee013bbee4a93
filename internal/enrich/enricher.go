// Package enrich attaches length, NDVI and AQI attributes to every edge of
// a raw road graph using the raster sampler and the station interpolator.
package enrich

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/airquality"
	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/graph"
)

// Error is a fatal enrichment failure: the raw graph is empty or an input
// source is entirely unusable. Per-edge lookup failures are never fatal;
// they fall back to configured defaults.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "enrichment failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "enrichment failed: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GreennessSampler answers line-based greenness queries.
// Implemented by raster.Sampler.
type GreennessSampler interface {
	SampleLine(line geo.LineString) (float64, error)
}

// Config holds configuration for the enricher.
type Config struct {
	// DefaultNDVI is assigned when a raster lookup fails (default: 0.0,
	// explicitly allowed to be zero).
	DefaultNDVI float64

	// DefaultAQI is assigned when no station data is available
	// (default: 50.0). Zero means 50.
	DefaultAQI float64

	// Workers is the number of goroutines enriching edges (default: 1).
	// Edge computations are independent and read-only over the inputs,
	// and each edge's attributes are written by exactly one worker.
	Workers int

	// Logger for enrichment progress and fallback accounting.
	Logger zerolog.Logger
}

// Enricher produces the enriched graph. It mutates edge attributes in place;
// the graph exclusively owns the attribute storage.
type Enricher struct {
	sampler      GreennessSampler
	interpolator *airquality.Interpolator
	config       Config
}

// NewEnricher creates an Enricher. The sampler and interpolator are scoped
// to a single build; they are not retained beyond Enrich calls.
func NewEnricher(sampler GreennessSampler, interpolator *airquality.Interpolator, cfg Config) *Enricher {
	if cfg.DefaultAQI == 0 {
		cfg.DefaultAQI = 50.0
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Enricher{
		sampler:      sampler,
		interpolator: interpolator,
		config:       cfg,
	}
}

// Enrich assigns length, ndvi and aqi to every edge of g. It is a pure
// function of the graph geometry, the raster and the station snapshot:
// re-running with identical inputs yields identical attributes. Returns a
// fatal *Error only for empty/unusable inputs; individual lookup failures
// fall back to the configured defaults.
func (e *Enricher) Enrich(ctx context.Context, g *graph.Graph, snapshot *airquality.Snapshot) error {
	if g == nil || g.NumNodes() == 0 || g.NumEdges() == 0 {
		return &Error{Reason: "raw graph is empty"}
	}
	if e.sampler == nil {
		return &Error{Reason: "no raster sampler"}
	}
	if e.interpolator == nil {
		return &Error{Reason: "no station interpolator"}
	}

	if snapshot == nil || snapshot.Len() == 0 {
		e.config.Logger.Warn().
			Float64("default_aqi", e.config.DefaultAQI).
			Msg("no station data, enriching with default AQI")
	}

	edges := g.Edges()
	var ndviFallbacks, aqiFallbacks int64
	var mu sync.Mutex

	work := func(es []*graph.Edge) (int64, int64) {
		var nf, af int64
		for _, edge := range es {
			nf += e.enrichNDVIAndLength(g, edge)
			af += e.enrichAQI(g, edge, snapshot)
		}
		return nf, af
	}

	if e.config.Workers == 1 {
		ndviFallbacks, aqiFallbacks = work(edges)
	} else {
		var wg sync.WaitGroup
		chunk := (len(edges) + e.config.Workers - 1) / e.config.Workers
		for start := 0; start < len(edges); start += chunk {
			end := start + chunk
			if end > len(edges) {
				end = len(edges)
			}
			wg.Add(1)
			go func(es []*graph.Edge) {
				defer wg.Done()
				nf, af := work(es)
				mu.Lock()
				ndviFallbacks += nf
				aqiFallbacks += af
				mu.Unlock()
			}(edges[start:end])
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return &Error{Reason: "enrichment interrupted", Err: err}
	}

	e.config.Logger.Info().
		Int("edges", len(edges)).
		Int64("ndvi_fallbacks", ndviFallbacks).
		Int64("aqi_fallbacks", aqiFallbacks).
		Msg("graph enrichment complete")
	return nil
}

// enrichNDVIAndLength fills length and ndvi on the edge, returning 1 when
// the NDVI lookup fell back to the default.
func (e *Enricher) enrichNDVIAndLength(g *graph.Graph, edge *graph.Edge) int64 {
	line := edgeLine(g, edge)

	if edge.Attrs.Length <= 0 {
		edge.Attrs.Length = line.Length()
		if edge.Attrs.Length <= 0 {
			// Zero-length geometry still needs a positive weight.
			edge.Attrs.Length = 1
		}
	}

	ndvi, err := e.sampler.SampleLine(line)
	if err != nil {
		edge.Attrs.NDVI = e.config.DefaultNDVI
		return 1
	}
	edge.Attrs.NDVI = clampNDVI(ndvi)
	return 0
}

// enrichAQI fills aqi on the edge from the station nearest its midpoint,
// returning 1 when the lookup fell back to the default.
func (e *Enricher) enrichAQI(g *graph.Graph, edge *graph.Edge, snapshot *airquality.Snapshot) int64 {
	mid := edgeLine(g, edge).Midpoint()

	aqi, err := e.interpolator.NearestAQI(mid, snapshot)
	if err != nil {
		if !errors.Is(err, airquality.ErrNoStationData) {
			e.config.Logger.Debug().Err(err).
				Int64("from", edge.From).
				Int64("to", edge.To).
				Msg("aqi lookup failed, using default")
		}
		edge.Attrs.AQI = e.config.DefaultAQI
		return 1
	}
	if aqi < 0 {
		aqi = 0
	}
	edge.Attrs.AQI = aqi
	return 0
}

// edgeLine returns the edge geometry, synthesizing a straight segment from
// the endpoint nodes when no geometry was supplied.
func edgeLine(g *graph.Graph, edge *graph.Edge) geo.LineString {
	if len(edge.Geometry) >= 2 {
		return edge.Geometry
	}
	from, okFrom := g.Node(edge.From)
	to, okTo := g.Node(edge.To)
	if !okFrom || !okTo {
		return edge.Geometry
	}
	return geo.LineString{
		{Lat: from.Lat, Lon: from.Lon},
		{Lat: to.Lat, Lon: to.Lon},
	}
}

func clampNDVI(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
