// Package routing computes comparable shortest and greenest paths over the
// enriched road graph.
package routing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/greenroute/greenroute/internal/geo"
)

// Routing errors.
var (
	// ErrNoPath indicates the destination cannot be reached from the origin.
	ErrNoPath = errors.New("no path between the given nodes")

	// ErrNodeNotFound indicates a query references a node not in the graph.
	ErrNodeNotFound = errors.New("node not in graph")

	// ErrEmptyGraph indicates the engine was given a graph without nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

// NoPathError reports a failed route query, naming the endpoints that could
// not be connected so the caller can show which side of the query failed.
type NoPathError struct {
	Origin      int64
	Destination int64
	// Unreachable lists the endpoint node IDs that are missing from the
	// graph or cut off from the other endpoint.
	Unreachable []int64
}

func (e *NoPathError) Error() string {
	ids := make([]string, len(e.Unreachable))
	for i, id := range e.Unreachable {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("no route from %d to %d (unreachable: %s)",
		e.Origin, e.Destination, strings.Join(ids, ", "))
}

func (e *NoPathError) Unwrap() error {
	return ErrNoPath
}

// PathResult is an ordered node sequence plus aggregates derived from the
// traversed edges. Results are created per query and hold no references
// back into the graph.
type PathResult struct {
	// Nodes is the traversed node ID sequence, origin first.
	Nodes []int64

	// Geometry is the concatenated edge geometry of the path.
	Geometry geo.LineString

	// TotalLength is the path length in meters.
	TotalLength float64

	// MeanNDVI is the unweighted mean NDVI of the traversed edges.
	MeanNDVI float64

	// MeanAQI is the unweighted mean AQI of the traversed edges.
	MeanAQI float64

	// GreenCost is the total hybrid cost of the traversed edges under the
	// query's cost configuration.
	GreenCost float64
}

// RoutePair holds the two comparable paths computed over the same graph
// instance, so both reflect identical topology.
type RoutePair struct {
	Shortest PathResult
	Greenest PathResult
}
