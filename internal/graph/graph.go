// Package graph defines the road network model: intersection nodes, road
// segment edges with a fixed environmental attribute schema, and the
// adjacency structure the routing engine searches.
package graph

import (
	"fmt"
	"sort"

	"github.com/greenroute/greenroute/internal/geo"
)

// Node is a road-network intersection. Immutable once the graph is built.
type Node struct {
	ID  int64
	Lat float64
	Lon float64
}

// EdgeAttrs is the fixed attribute schema every enriched edge carries.
// Using a struct instead of a free-form attribute map turns the enrichment
// contract into a statically checked one.
type EdgeAttrs struct {
	// Length is the segment length in meters.
	Length float64

	// NDVI is the mean vegetation index along the segment, in [-1, 1].
	NDVI float64

	// AQI is the air quality index at the segment, >= 0.
	AQI float64
}

// Edge is a directed road segment between two nodes. Edges are owned by the
// graph; the geometry is the segment's full path used for raster sampling.
type Edge struct {
	From     int64
	To       int64
	Attrs    EdgeAttrs
	Geometry geo.LineString
}

// Graph is an adjacency-list road network. Not safe for concurrent
// mutation; read access is safe once construction has finished.
type Graph struct {
	nodes map[int64]Node
	out   map[int64][]*Edge
	edges []*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int64]Node),
		out:   make(map[int64][]*Edge),
	}
}

// AddNode adds or replaces a node.
func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge adds a directed edge. Both endpoints must already exist.
func (g *Graph) AddEdge(from, to int64, attrs EdgeAttrs, geometry geo.LineString) (*Edge, error) {
	if _, ok := g.nodes[from]; !ok {
		return nil, fmt.Errorf("edge references unknown node %d", from)
	}
	if _, ok := g.nodes[to]; !ok {
		return nil, fmt.Errorf("edge references unknown node %d", to)
	}

	e := &Edge{From: from, To: to, Attrs: attrs, Geometry: geometry}
	g.out[from] = append(g.out[from], e)
	g.edges = append(g.edges, e)
	return e, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id int64) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// OutEdges returns the edges leaving the given node. Callers must not
// modify the returned slice.
func (g *Graph) OutEdges(id int64) []*Edge {
	return g.out[id]
}

// Edges returns every edge in insertion order. Callers must not modify the
// returned slice.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}
