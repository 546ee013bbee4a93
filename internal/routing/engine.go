package routing

import (
	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/cost"
	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/graph"
)

// EngineConfig holds configuration for the routing engine.
type EngineConfig struct {
	// Cost configures the hybrid green-cost weights.
	Cost cost.Config

	// Logger for query logging.
	Logger zerolog.Logger
}

// Engine answers route queries over an enriched graph. It only reads the
// graph and keeps no state between queries; each query is a pure function
// of (graph, origin, destination, cost config).
type Engine struct {
	graph  *graph.Graph
	model  *cost.Model
	index  *NodeIndex
	logger zerolog.Logger
}

// NewEngine creates an engine over the enriched graph. The node index is
// built once up front.
func NewEngine(g *graph.Graph, cfg EngineConfig) *Engine {
	return &Engine{
		graph:  g,
		model:  cost.NewModel(cfg.Cost),
		index:  NewNodeIndex(g),
		logger: cfg.Logger,
	}
}

// Routes computes the shortest and the greenest path between two node IDs.
// Both searches run the same algorithm over the same graph instance; only
// the weight function differs, so the two results are directly comparable.
func (e *Engine) Routes(origin, destination int64) (*RoutePair, error) {
	if err := e.checkEndpoints(origin, destination); err != nil {
		return nil, err
	}

	shortNodes, shortEdges, err := shortestPath(e.graph, origin, destination, e.model.Distance)
	if err != nil {
		// Distance and green cost share topology: unreachable under one
		// weight means unreachable under both.
		return nil, &NoPathError{
			Origin:      origin,
			Destination: destination,
			Unreachable: []int64{destination},
		}
	}

	greenNodes, greenEdges, err := shortestPath(e.graph, origin, destination, e.model.GreenCost)
	if err != nil {
		return nil, &NoPathError{
			Origin:      origin,
			Destination: destination,
			Unreachable: []int64{destination},
		}
	}

	pair := &RoutePair{
		Shortest: e.buildResult(shortNodes, shortEdges),
		Greenest: e.buildResult(greenNodes, greenEdges),
	}

	e.logger.Debug().
		Int64("origin", origin).
		Int64("destination", destination).
		Float64("shortest_m", pair.Shortest.TotalLength).
		Float64("greenest_m", pair.Greenest.TotalLength).
		Msg("route pair computed")
	return pair, nil
}

// RoutesBetween snaps two coordinates to their nearest graph nodes and
// computes the route pair between them.
func (e *Engine) RoutesBetween(origin, destination geo.Coordinate) (*RoutePair, error) {
	from, err := e.index.Nearest(origin)
	if err != nil {
		return nil, err
	}
	to, err := e.index.Nearest(destination)
	if err != nil {
		return nil, err
	}
	return e.Routes(from.ID, to.ID)
}

// checkEndpoints verifies both endpoints exist, reporting every missing one.
func (e *Engine) checkEndpoints(origin, destination int64) error {
	var missing []int64
	if _, ok := e.graph.Node(origin); !ok {
		missing = append(missing, origin)
	}
	if _, ok := e.graph.Node(destination); !ok {
		missing = append(missing, destination)
	}
	if len(missing) > 0 {
		return &NoPathError{Origin: origin, Destination: destination, Unreachable: missing}
	}
	return nil
}

// buildResult derives the path aggregates from the traversed edges. This is
// pure post-processing, independent of the search.
func (e *Engine) buildResult(nodes []int64, edges []*graph.Edge) PathResult {
	result := PathResult{Nodes: nodes}

	var ndviSum, aqiSum float64
	for _, edge := range edges {
		result.TotalLength += edge.Attrs.Length
		result.GreenCost += e.model.GreenCost(edge.Attrs)
		ndviSum += edge.Attrs.NDVI
		aqiSum += edge.Attrs.AQI
		result.Geometry = appendGeometry(result.Geometry, e.edgeGeometry(edge))
	}
	if len(edges) > 0 {
		result.MeanNDVI = ndviSum / float64(len(edges))
		result.MeanAQI = aqiSum / float64(len(edges))
	}
	return result
}

// edgeGeometry returns the edge's geometry, synthesized from endpoint nodes
// when absent.
func (e *Engine) edgeGeometry(edge *graph.Edge) geo.LineString {
	if len(edge.Geometry) >= 2 {
		return edge.Geometry
	}
	from, okFrom := e.graph.Node(edge.From)
	to, okTo := e.graph.Node(edge.To)
	if !okFrom || !okTo {
		return nil
	}
	return geo.LineString{
		{Lat: from.Lat, Lon: from.Lon},
		{Lat: to.Lat, Lon: to.Lon},
	}
}

// appendGeometry concatenates consecutive edge geometries, dropping the
// duplicated shared vertex.
func appendGeometry(dst, next geo.LineString) geo.LineString {
	if len(next) == 0 {
		return dst
	}
	if len(dst) > 0 && dst[len(dst)-1] == next[0] {
		next = next[1:]
	}
	return append(dst, next...)
}
