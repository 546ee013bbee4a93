package cost

import (
	"math"
	"testing"

	"github.com/greenroute/greenroute/internal/graph"
)

func TestModel_Distance(t *testing.T) {
	m := NewModel(DefaultConfig())
	attrs := graph.EdgeAttrs{Length: 250, NDVI: 0.9, AQI: 300}
	if got := m.Distance(attrs); got != 250 {
		t.Errorf("distance weight must be raw length, got %f", got)
	}
}

func TestModel_GreenCost_KnownValues(t *testing.T) {
	m := NewModel(DefaultConfig())

	// length=100, ndvi=0.8, aqi=20:
	// greenness = 100 * (1 - 0.9) = 10
	// pollution = 100 * 1.2 = 120
	// green = 0.7*10 + 0.3*120 = 43
	attrs := graph.EdgeAttrs{Length: 100, NDVI: 0.8, AQI: 20}
	if got := m.GreenCost(attrs); math.Abs(got-43) > 1e-9 {
		t.Errorf("expected green cost 43, got %f", got)
	}

	// length=150, ndvi=-0.2, aqi=80:
	// greenness = 150 * 0.6 = 90
	// pollution = 150 * 1.8 = 270
	// green = 0.7*90 + 0.3*270 = 144
	attrs = graph.EdgeAttrs{Length: 150, NDVI: -0.2, AQI: 80}
	if got := m.GreenCost(attrs); math.Abs(got-144) > 1e-9 {
		t.Errorf("expected green cost 144, got %f", got)
	}
}

func TestModel_GreenCost_MonotoneInNDVI(t *testing.T) {
	m := NewModel(DefaultConfig())

	prev := math.Inf(1)
	for ndvi := -1.0; ndvi <= 1.0; ndvi += 0.05 {
		got := m.GreenCost(graph.EdgeAttrs{Length: 100, NDVI: ndvi, AQI: 50})
		if got > prev {
			t.Fatalf("green cost increased with NDVI at %f: %f > %f", ndvi, got, prev)
		}
		prev = got
	}
}

func TestModel_GreenCost_MonotoneInAQI(t *testing.T) {
	m := NewModel(DefaultConfig())

	prev := -1.0
	for aqi := 0.0; aqi <= 500; aqi += 10 {
		got := m.GreenCost(graph.EdgeAttrs{Length: 100, NDVI: 0.2, AQI: aqi})
		if got < prev {
			t.Fatalf("green cost decreased with AQI at %f: %f < %f", aqi, got, prev)
		}
		prev = got
	}
}

func TestModel_Costs_NonNegative(t *testing.T) {
	m := NewModel(DefaultConfig())

	for _, ndvi := range []float64{-1, -0.5, 0, 0.5, 1} {
		for _, aqi := range []float64{0, 50, 500} {
			attrs := graph.EdgeAttrs{Length: 123, NDVI: ndvi, AQI: aqi}
			if c := m.GreennessCost(attrs); c < 0 {
				t.Errorf("negative greenness cost %f for ndvi=%f", c, ndvi)
			}
			if c := m.PollutionCost(attrs); c < 0 {
				t.Errorf("negative pollution cost %f for aqi=%f", c, aqi)
			}
			if c := m.GreenCost(attrs); c < 0 {
				t.Errorf("negative green cost %f for ndvi=%f aqi=%f", c, ndvi, aqi)
			}
		}
	}
}

func TestModel_ClampsOutOfRangeInputs(t *testing.T) {
	m := NewModel(DefaultConfig())

	// NDVI above 1 behaves like 1 (zero greenness cost).
	if c := m.GreennessCost(graph.EdgeAttrs{Length: 100, NDVI: 3}); c != 0 {
		t.Errorf("expected clamped greenness cost 0, got %f", c)
	}
	// NDVI below -1 behaves like -1 (full length).
	if c := m.GreennessCost(graph.EdgeAttrs{Length: 100, NDVI: -7}); c != 100 {
		t.Errorf("expected clamped greenness cost 100, got %f", c)
	}
	// Negative AQI floors to 0.
	if c := m.PollutionCost(graph.EdgeAttrs{Length: 100, AQI: -10}); c != 100 {
		t.Errorf("expected floored pollution cost 100, got %f", c)
	}
}

func TestModel_CustomWeights(t *testing.T) {
	m := NewModel(Config{GreennessWeight: 1, PollutionWeight: 0})
	attrs := graph.EdgeAttrs{Length: 100, NDVI: 0, AQI: 400}

	// Pollution fully ignored.
	if got := m.GreenCost(attrs); math.Abs(got-50) > 1e-9 {
		t.Errorf("expected pure greenness cost 50, got %f", got)
	}
}

func TestModel_ZeroConfigUsesDefaults(t *testing.T) {
	m := NewModel(Config{})
	attrs := graph.EdgeAttrs{Length: 100, NDVI: 0.8, AQI: 20}
	if got := m.GreenCost(attrs); math.Abs(got-43) > 1e-9 {
		t.Errorf("expected default-weighted cost 43, got %f", got)
	}
}

func TestModel_CustomTransforms(t *testing.T) {
	// Quadratic pollution penalty instead of the default linear one.
	m := NewModel(Config{
		GreennessWeight:    0.5,
		PollutionWeight:    0.5,
		PollutionTransform: func(length, aqi float64) float64 { return length * (1 + (aqi/100)*(aqi/100)) },
	})
	attrs := graph.EdgeAttrs{Length: 100, NDVI: 1, AQI: 200}

	// Greenness component is zero at ndvi=1; pollution is 100*(1+4)=500.
	if got := m.GreenCost(attrs); math.Abs(got-250) > 1e-9 {
		t.Errorf("expected custom pollution transform cost 250, got %f", got)
	}
}

func TestModel_CustomTransformSeesSanitizedInputs(t *testing.T) {
	var gotNDVI, gotAQI float64
	m := NewModel(Config{
		GreennessWeight:    1,
		PollutionWeight:    1,
		GreennessTransform: func(_, ndvi float64) float64 { gotNDVI = ndvi; return 0 },
		PollutionTransform: func(_, aqi float64) float64 { gotAQI = aqi; return 0 },
	})

	m.GreenCost(graph.EdgeAttrs{Length: 100, NDVI: 5, AQI: -80})
	if gotNDVI != 1 {
		t.Errorf("transform should see clamped NDVI 1, got %f", gotNDVI)
	}
	if gotAQI != 0 {
		t.Errorf("transform should see floored AQI 0, got %f", gotAQI)
	}
}
