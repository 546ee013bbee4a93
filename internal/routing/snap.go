package routing

import (
	"github.com/dhconnelly/rtreego"

	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/graph"
)

// nodeTol is the side length of the degenerate rectangle representing a
// node in the r-tree, in degrees.
const nodeTol = 0.0001

// nodeEntry wraps a graph node for r-tree indexing.
type nodeEntry struct {
	location rtreego.Point
	node     graph.Node
}

func (n *nodeEntry) Bounds() rtreego.Rect {
	return n.location.ToRect(nodeTol)
}

// NodeIndex is a spatial index over graph nodes used to snap query
// coordinates to the nearest intersection.
type NodeIndex struct {
	tree *rtreego.Rtree
}

// NewNodeIndex builds the index from every node in the graph.
func NewNodeIndex(g *graph.Graph) *NodeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, n := range g.Nodes() {
		tree.Insert(&nodeEntry{
			location: rtreego.Point{n.Lon, n.Lat},
			node:     n,
		})
	}
	return &NodeIndex{tree: tree}
}

// Nearest returns the graph node closest to the coordinate.
func (i *NodeIndex) Nearest(c geo.Coordinate) (graph.Node, error) {
	found := i.tree.NearestNeighbor(rtreego.Point{c.Lon, c.Lat})
	if found == nil {
		return graph.Node{}, ErrEmptyGraph
	}
	return found.(*nodeEntry).node, nil
}
