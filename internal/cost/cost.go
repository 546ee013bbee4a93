// Package cost derives routing weights from enriched edge attributes.
package cost

import (
	"github.com/greenroute/greenroute/internal/graph"
)

// TransformFunc maps an edge length and a sanitized attribute value to one
// cost component. Custom transforms must return non-negative costs and keep
// the monotonicity the search relies on: cost non-increasing in NDVI,
// non-decreasing in AQI.
type TransformFunc func(length, value float64) float64

// Config holds the hybrid green-cost weights and transforms.
type Config struct {
	// GreennessWeight scales the inverted-NDVI component (default: 0.7).
	GreennessWeight float64

	// PollutionWeight scales the AQI component (default: 0.3).
	PollutionWeight float64

	// GreennessTransform converts (length, clamped NDVI) into the
	// greenness component. Nil selects the default inversion, where
	// ndvi=1 costs nothing and ndvi=-1 costs the full length.
	GreennessTransform TransformFunc

	// PollutionTransform converts (length, floored AQI) into the
	// pollution component. Nil selects the default linear scaling,
	// length * (1 + aqi/100).
	PollutionTransform TransformFunc
}

// DefaultConfig returns the default weighting. By convention the weights
// sum to 1; this is documented, not enforced.
func DefaultConfig() Config {
	return Config{GreennessWeight: 0.7, PollutionWeight: 0.3}
}

func defaultGreennessTransform(length, ndvi float64) float64 {
	ndviNorm := (ndvi + 1) / 2
	return length * (1 - ndviNorm)
}

func defaultPollutionTransform(length, aqi float64) float64 {
	return length * (1 + aqi/100)
}

// withDefaults fills zero weights and nil transforms. A config with both
// weights set is used as-is even when the sum differs from 1.
func (c Config) withDefaults() Config {
	if c.GreennessWeight == 0 && c.PollutionWeight == 0 {
		c.GreennessWeight = 0.7
		c.PollutionWeight = 0.3
	}
	if c.GreennessTransform == nil {
		c.GreennessTransform = defaultGreennessTransform
	}
	if c.PollutionTransform == nil {
		c.PollutionTransform = defaultPollutionTransform
	}
	return c
}

// Model computes per-edge routing weights. The distance weight is the raw
// segment length; the green cost combines inverted greenness and pollution,
// both scaled by length so long green segments are not penalized against
// short ones. All weights are non-negative for NDVI in [-1, 1] and AQI >= 0,
// which the shortest-path search requires.
type Model struct {
	config Config
}

// NewModel creates a cost model.
func NewModel(cfg Config) *Model {
	return &Model{config: cfg.withDefaults()}
}

// Distance returns the distance weight of the edge.
func (m *Model) Distance(attrs graph.EdgeAttrs) float64 {
	return attrs.Length
}

// GreennessCost applies the greenness transform to the edge's NDVI, clamped
// to [-1, 1] first so raster noise cannot produce negative costs.
func (m *Model) GreennessCost(attrs graph.EdgeAttrs) float64 {
	ndvi := attrs.NDVI
	if ndvi > 1 {
		ndvi = 1
	}
	if ndvi < -1 {
		ndvi = -1
	}
	return m.config.GreennessTransform(attrs.Length, ndvi)
}

// PollutionCost applies the pollution transform to the edge's AQI, floored
// at zero.
func (m *Model) PollutionCost(attrs graph.EdgeAttrs) float64 {
	aqi := attrs.AQI
	if aqi < 0 {
		aqi = 0
	}
	return m.config.PollutionTransform(attrs.Length, aqi)
}

// GreenCost is the hybrid routing weight:
// w1*greenness_cost + w2*pollution_cost.
func (m *Model) GreenCost(attrs graph.EdgeAttrs) float64 {
	return m.config.GreennessWeight*m.GreennessCost(attrs) +
		m.config.PollutionWeight*m.PollutionCost(attrs)
}
