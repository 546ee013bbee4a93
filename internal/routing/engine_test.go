package routing

import (
	"errors"
	"math"
	"testing"

	"github.com/greenroute/greenroute/internal/cost"
	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/graph"
)

type envEdge struct {
	from, to int64
	length   float64
	ndvi     float64
	aqi      float64
}

func envGraph(t *testing.T, nodes []graph.Node, edges []envEdge) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		attrs := graph.EdgeAttrs{Length: e.length, NDVI: e.ndvi, AQI: e.aqi}
		if _, err := g.AddEdge(e.from, e.to, attrs, nil); err != nil {
			t.Fatalf("adding edge %d->%d: %v", e.from, e.to, err)
		}
	}
	return g
}

func TestEngine_ThreeNodeLineGraph(t *testing.T) {
	// A--B--C with the attributes from the reference scenario. Both path
	// types must coincide since there is only one route.
	g := envGraph(t,
		[]graph.Node{{ID: 1}, {ID: 2}, {ID: 3}},
		[]envEdge{
			{from: 1, to: 2, length: 100, ndvi: 0.8, aqi: 20},
			{from: 2, to: 3, length: 150, ndvi: -0.2, aqi: 80},
		})
	engine := NewEngine(g, EngineConfig{})

	pair, err := engine.Routes(1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.Shortest.TotalLength != 250 {
		t.Errorf("expected shortest length 250, got %f", pair.Shortest.TotalLength)
	}
	if pair.Greenest.TotalLength != 250 {
		t.Errorf("single-route graph: greenest must follow the same edges, got %f", pair.Greenest.TotalLength)
	}
	if len(pair.Greenest.Nodes) != 3 || pair.Greenest.Nodes[1] != 2 {
		t.Errorf("unexpected greenest path %v", pair.Greenest.Nodes)
	}

	// Aggregates: mean over two edges.
	if math.Abs(pair.Shortest.MeanNDVI-0.3) > 1e-9 {
		t.Errorf("expected mean NDVI 0.3, got %f", pair.Shortest.MeanNDVI)
	}
	if math.Abs(pair.Shortest.MeanAQI-50) > 1e-9 {
		t.Errorf("expected mean AQI 50, got %f", pair.Shortest.MeanAQI)
	}
	// Green cost: 43 + 144 under default weights.
	if math.Abs(pair.Shortest.GreenCost-187) > 1e-9 {
		t.Errorf("expected green cost 187, got %f", pair.Shortest.GreenCost)
	}
}

func TestEngine_GreenestPrefersCleanDetour(t *testing.T) {
	// Short dirty edge vs a slightly longer leafy detour.
	g := envGraph(t,
		[]graph.Node{{ID: 1}, {ID: 2}, {ID: 3}},
		[]envEdge{
			{from: 1, to: 3, length: 100, ndvi: -0.5, aqi: 200},
			{from: 1, to: 2, length: 70, ndvi: 0.9, aqi: 30},
			{from: 2, to: 3, length: 70, ndvi: 0.9, aqi: 30},
		})
	engine := NewEngine(g, EngineConfig{})

	pair, err := engine.Routes(1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pair.Shortest.Nodes) != 2 {
		t.Errorf("shortest should take the direct edge, got %v", pair.Shortest.Nodes)
	}
	if len(pair.Greenest.Nodes) != 3 {
		t.Errorf("greenest should take the detour, got %v", pair.Greenest.Nodes)
	}
	if pair.Greenest.MeanAQI >= pair.Shortest.MeanAQI {
		t.Errorf("greenest path should have lower mean AQI: %f vs %f",
			pair.Greenest.MeanAQI, pair.Shortest.MeanAQI)
	}
}

func TestEngine_DisconnectedGraph(t *testing.T) {
	g := envGraph(t,
		[]graph.Node{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		[]envEdge{
			{from: 1, to: 2, length: 10},
			{from: 3, to: 4, length: 10},
		})
	engine := NewEngine(g, EngineConfig{})

	_, err := engine.Routes(1, 4)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}

	var noPath *NoPathError
	if !errors.As(err, &noPath) {
		t.Fatalf("expected *NoPathError, got %T", err)
	}
	if len(noPath.Unreachable) != 1 || noPath.Unreachable[0] != 4 {
		t.Errorf("expected destination 4 reported unreachable, got %v", noPath.Unreachable)
	}
}

func TestEngine_MissingEndpointsReported(t *testing.T) {
	g := envGraph(t, []graph.Node{{ID: 1}}, nil)
	engine := NewEngine(g, EngineConfig{})

	_, err := engine.Routes(98, 99)
	var noPath *NoPathError
	if !errors.As(err, &noPath) {
		t.Fatalf("expected *NoPathError, got %v", err)
	}
	if len(noPath.Unreachable) != 2 {
		t.Errorf("both missing endpoints must be reported, got %v", noPath.Unreachable)
	}
}

// TestEngine_GreenestOptimalOnToyGraph cross-checks the search against
// exhaustive enumeration of simple paths on a small dense graph.
func TestEngine_GreenestOptimalOnToyGraph(t *testing.T) {
	nodes := make([]graph.Node, 6)
	for i := range nodes {
		nodes[i] = graph.Node{ID: int64(i)}
	}
	edges := []envEdge{
		{0, 1, 100, 0.2, 40}, {1, 0, 100, 0.2, 40},
		{1, 2, 120, 0.7, 30}, {2, 1, 120, 0.7, 30},
		{0, 3, 90, -0.3, 150}, {3, 0, 90, -0.3, 150},
		{3, 2, 80, 0.1, 90}, {2, 3, 80, 0.1, 90},
		{1, 4, 60, 0.9, 20}, {4, 1, 60, 0.9, 20},
		{4, 5, 110, 0.5, 60}, {5, 4, 110, 0.5, 60},
		{2, 5, 70, -0.8, 220}, {5, 2, 70, -0.8, 220},
		{3, 5, 300, 0.95, 10}, {5, 3, 300, 0.95, 10},
	}
	g := envGraph(t, nodes, edges)
	engine := NewEngine(g, EngineConfig{})
	model := cost.NewModel(cost.DefaultConfig())

	pair, err := engine.Routes(0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	best := bruteForceBest(g, 0, 5, model.GreenCost)
	if math.Abs(pair.Greenest.GreenCost-best) > 1e-9 {
		t.Errorf("greenest path cost %f, exhaustive enumeration found %f",
			pair.Greenest.GreenCost, best)
	}
	if pair.Greenest.GreenCost < best-1e-9 {
		t.Error("search found a cost lower than the true optimum")
	}
}

// bruteForceBest enumerates every simple path and returns the minimum total
// weight.
func bruteForceBest(g *graph.Graph, origin, destination int64, weight WeightFunc) float64 {
	best := math.Inf(1)
	visited := map[int64]bool{origin: true}

	var walk func(at int64, total float64)
	walk = func(at int64, total float64) {
		if at == destination {
			if total < best {
				best = total
			}
			return
		}
		for _, e := range g.OutEdges(at) {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			walk(e.To, total+weight(e.Attrs))
			visited[e.To] = false
		}
	}
	walk(origin, 0)
	return best
}

func TestEngine_RoutesBetween_SnapsToNearestNode(t *testing.T) {
	g := envGraph(t,
		[]graph.Node{
			{ID: 1, Lat: 12.90, Lon: 77.59},
			{ID: 2, Lat: 12.91, Lon: 77.59},
			{ID: 3, Lat: 12.92, Lon: 77.59},
		},
		[]envEdge{
			{from: 1, to: 2, length: 1100, ndvi: 0.5, aqi: 40},
			{from: 2, to: 3, length: 1100, ndvi: 0.5, aqi: 40},
		})
	engine := NewEngine(g, EngineConfig{})

	// Query points slightly off the first and last intersections.
	pair, err := engine.RoutesBetween(
		geo.Coordinate{Lat: 12.9001, Lon: 77.5902},
		geo.Coordinate{Lat: 12.9199, Lon: 77.5898},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pair.Shortest.Nodes) != 3 || pair.Shortest.Nodes[0] != 1 || pair.Shortest.Nodes[2] != 3 {
		t.Errorf("expected snapped path 1-2-3, got %v", pair.Shortest.Nodes)
	}
}

func TestEngine_ResultGeometryConcatenated(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Lat: 12.90, Lon: 77.59})
	g.AddNode(graph.Node{ID: 2, Lat: 12.91, Lon: 77.59})
	g.AddNode(graph.Node{ID: 3, Lat: 12.92, Lon: 77.59})
	mustEdge(t, g, 1, 2, geo.LineString{{Lat: 12.90, Lon: 77.59}, {Lat: 12.91, Lon: 77.59}})
	mustEdge(t, g, 2, 3, geo.LineString{{Lat: 12.91, Lon: 77.59}, {Lat: 12.92, Lon: 77.59}})

	engine := NewEngine(g, EngineConfig{})
	pair, err := engine.Routes(1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shared vertex is deduplicated.
	if len(pair.Shortest.Geometry) != 3 {
		t.Errorf("expected 3 geometry points, got %d", len(pair.Shortest.Geometry))
	}
}

func mustEdge(t *testing.T, g *graph.Graph, from, to int64, line geo.LineString) {
	t.Helper()
	if _, err := g.AddEdge(from, to, graph.EdgeAttrs{Length: line.Length(), NDVI: 0.2, AQI: 50}, line); err != nil {
		t.Fatal(err)
	}
}
