package routing

import (
	"errors"
	"testing"

	"github.com/greenroute/greenroute/internal/graph"
)

func buildGraph(t *testing.T, nodeCount int64, edges [][3]float64) *graph.Graph {
	t.Helper()
	g := graph.New()
	for id := int64(0); id < nodeCount; id++ {
		g.AddNode(graph.Node{ID: id})
	}
	for _, e := range edges {
		from, to := int64(e[0]), int64(e[1])
		if _, err := g.AddEdge(from, to, graph.EdgeAttrs{Length: e[2]}, nil); err != nil {
			t.Fatalf("adding edge %d->%d: %v", from, to, err)
		}
	}
	return g
}

func lengthWeight(attrs graph.EdgeAttrs) float64 { return attrs.Length }

func TestShortestPath_PicksCheaperRoute(t *testing.T) {
	// 0 -> 1 -> 3 costs 30; 0 -> 2 -> 3 costs 25.
	g := buildGraph(t, 4, [][3]float64{
		{0, 1, 10}, {1, 3, 20},
		{0, 2, 5}, {2, 3, 20},
	})

	nodes, edges, err := shortestPath(g, 0, 3, lengthWeight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{0, 2, 3}
	if len(nodes) != len(want) {
		t.Fatalf("expected path %v, got %v", want, nodes)
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, nodes)
		}
	}
	if len(edges) != 2 {
		t.Errorf("expected 2 traversed edges, got %d", len(edges))
	}
}

func TestShortestPath_SameNode(t *testing.T) {
	g := buildGraph(t, 1, nil)
	nodes, edges, err := shortestPath(g, 0, 0, lengthWeight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0] != 0 {
		t.Errorf("expected single-node path, got %v", nodes)
	}
	if len(edges) != 0 {
		t.Errorf("expected no edges, got %d", len(edges))
	}
}

func TestShortestPath_Unreachable(t *testing.T) {
	// Two components: {0,1} and {2,3}.
	g := buildGraph(t, 4, [][3]float64{
		{0, 1, 10}, {1, 0, 10},
		{2, 3, 10}, {3, 2, 10},
	})

	_, _, err := shortestPath(g, 0, 3, lengthWeight)
	if !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
}

func TestShortestPath_DeterministicTieBreak(t *testing.T) {
	// Two equal-cost routes 0->1->3 and 0->2->3. The frontier pops the
	// lower node ID on equal distance, so node 1 settles first and the
	// path through it wins.
	g := buildGraph(t, 4, [][3]float64{
		{0, 2, 10}, {2, 3, 10},
		{0, 1, 10}, {1, 3, 10},
	})

	for i := 0; i < 10; i++ {
		nodes, _, err := shortestPath(g, 0, 3, lengthWeight)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if nodes[1] != 1 {
			t.Fatalf("run %d: tie not broken by lower node ID: %v", i, nodes)
		}
	}
}

func TestShortestPath_RelaxesLongerFirstPath(t *testing.T) {
	// Direct edge is worse than the two-hop route found later.
	g := buildGraph(t, 3, [][3]float64{
		{0, 2, 100},
		{0, 1, 10}, {1, 2, 10},
	})

	nodes, _, err := shortestPath(g, 0, 2, lengthWeight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Errorf("expected the relaxed two-hop path, got %v", nodes)
	}
}
