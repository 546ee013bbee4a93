package routing

import (
	"container/heap"

	"github.com/greenroute/greenroute/internal/graph"
)

// WeightFunc selects an edge weight from enriched attributes. Weights must
// be non-negative; the cost model guarantees this for valid NDVI/AQI.
type WeightFunc func(attrs graph.EdgeAttrs) float64

// frontierNode is a priority queue entry.
type frontierNode struct {
	id    int64
	dist  float64
	index int
}

// frontier is a min-heap over (dist, id). Equal distances pop the lower
// node ID first so searches are deterministic.
type frontier []*frontierNode

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].id < f[j].id
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x interface{}) {
	n := x.(*frontierNode)
	n.index = len(*f)
	*f = append(*f, n)
}

func (f *frontier) Pop() interface{} {
	old := *f
	n := old[len(old)-1]
	n.index = -1
	*f = old[:len(old)-1]
	return n
}

// shortestPath runs Dijkstra from origin to destination under the given
// weight function. Returns the node sequence and the traversed edges, or
// ErrNoPath when the destination is unreachable.
func shortestPath(g *graph.Graph, origin, destination int64, weight WeightFunc) ([]int64, []*graph.Edge, error) {
	if origin == destination {
		return []int64{origin}, nil, nil
	}

	dist := map[int64]float64{origin: 0}
	prevEdge := map[int64]*graph.Edge{}
	inQueue := map[int64]*frontierNode{}
	settled := map[int64]bool{}

	f := &frontier{}
	heap.Init(f)
	start := &frontierNode{id: origin, dist: 0}
	heap.Push(f, start)
	inQueue[origin] = start

	for f.Len() > 0 {
		current := heap.Pop(f).(*frontierNode)
		delete(inQueue, current.id)
		if settled[current.id] {
			continue
		}
		settled[current.id] = true

		if current.id == destination {
			break
		}

		for _, edge := range g.OutEdges(current.id) {
			if settled[edge.To] {
				continue
			}
			next := current.dist + weight(edge.Attrs)
			known, seen := dist[edge.To]
			if !seen || next < known {
				dist[edge.To] = next
				prevEdge[edge.To] = edge
				if node, ok := inQueue[edge.To]; ok {
					node.dist = next
					heap.Fix(f, node.index)
				} else {
					node := &frontierNode{id: edge.To, dist: next}
					heap.Push(f, node)
					inQueue[edge.To] = node
				}
			}
		}
	}

	if !settled[destination] {
		return nil, nil, ErrNoPath
	}

	// Walk predecessors back to the origin.
	var edges []*graph.Edge
	for at := destination; at != origin; {
		e := prevEdge[at]
		edges = append(edges, e)
		at = e.From
	}
	// Reverse into forward order.
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	nodes := make([]int64, 0, len(edges)+1)
	nodes = append(nodes, origin)
	for _, e := range edges {
		nodes = append(nodes, e.To)
	}
	return nodes, edges, nil
}
