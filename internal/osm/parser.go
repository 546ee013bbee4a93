// Package osm builds the raw road graph from an OpenStreetMap PBF extract.
package osm

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/graph"
)

// drivableHighways mirrors the highway filter of the upstream data
// pipeline: only road classes a car or bike would actually route over.
var drivableHighways = map[string]bool{
	"motorway":    true,
	"trunk":       true,
	"primary":     true,
	"secondary":   true,
	"tertiary":    true,
	"residential": true,
}

// ParserConfig holds configuration for the PBF parser.
type ParserConfig struct {
	// Procs is the parallelism handed to the PBF scanner (default: 3).
	Procs int

	// Logger for parse progress.
	Logger zerolog.Logger
}

// Parser reads a PBF extract into a road graph.
type Parser struct {
	procs  int
	logger zerolog.Logger
}

// NewParser creates a Parser.
func NewParser(cfg ParserConfig) *Parser {
	procs := cfg.Procs
	if procs <= 0 {
		procs = 3
	}
	return &Parser{procs: procs, logger: cfg.Logger}
}

// Parse scans the extract twice: first collecting drivable ways, then the
// node coordinates those ways reference. Ways are split into edges at every
// junction, so two ways crossing at a shared mid-way node connect in the
// resulting graph.
func (p *Parser) Parse(ctx context.Context, r io.ReadSeeker) (*graph.Graph, error) {
	ways, wayNodes, err := p.scanWays(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(ways) == 0 {
		return nil, fmt.Errorf("no drivable ways in extract")
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding extract: %w", err)
	}

	coords, err := p.scanNodes(ctx, r, wayNodes)
	if err != nil {
		return nil, err
	}

	return p.buildGraph(ways, coords)
}

// buildGraph converts the collected ways into graph edges. A node shared by
// two or more ways is a junction; every way is cut at its junctions, with
// each segment carrying the full intermediate geometry. Non-junction
// interior nodes survive only as geometry points. Two-way segments get one
// edge per direction.
func (p *Parser) buildGraph(ways []*osm.Way, coords map[osm.NodeID]geo.Coordinate) (*graph.Graph, error) {
	usage := make(map[osm.NodeID]int)
	for _, way := range ways {
		for _, wn := range way.Nodes {
			usage[wn.ID]++
		}
	}

	g := graph.New()
	var skipped int
	for _, way := range ways {
		if len(way.Nodes) < 2 {
			skipped++
			continue
		}

		complete := true
		for _, wn := range way.Nodes {
			if _, ok := coords[wn.ID]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			skipped++
			continue
		}

		oneWay := isOneWay(way)
		segStart := 0
		for i := 1; i < len(way.Nodes); i++ {
			// Cut at junctions and at the way's end.
			if i < len(way.Nodes)-1 && usage[way.Nodes[i].ID] < 2 {
				continue
			}
			if err := addSegment(g, way, coords, segStart, i, oneWay); err != nil {
				return nil, err
			}
			segStart = i
		}
	}

	p.logger.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Int("skipped_ways", skipped).
		Msg("road graph parsed from extract")

	if g.NumEdges() == 0 {
		return nil, fmt.Errorf("extract produced no usable edges")
	}
	return g, nil
}

// addSegment adds the way slice [from, to] as one edge (two for two-way
// streets), registering the segment endpoints as graph nodes.
func addSegment(g *graph.Graph, way *osm.Way, coords map[osm.NodeID]geo.Coordinate, from, to int, oneWay bool) error {
	line := make(geo.LineString, 0, to-from+1)
	for _, wn := range way.Nodes[from : to+1] {
		line = append(line, coords[wn.ID])
	}

	u := int64(way.Nodes[from].ID)
	v := int64(way.Nodes[to].ID)
	g.AddNode(graph.Node{ID: u, Lat: line[0].Lat, Lon: line[0].Lon})
	g.AddNode(graph.Node{ID: v, Lat: line[len(line)-1].Lat, Lon: line[len(line)-1].Lon})

	if _, err := g.AddEdge(u, v, graph.EdgeAttrs{}, line); err != nil {
		return err
	}
	if !oneWay {
		reversed := make(geo.LineString, len(line))
		for i, c := range line {
			reversed[len(line)-1-i] = c
		}
		if _, err := g.AddEdge(v, u, graph.EdgeAttrs{}, reversed); err != nil {
			return err
		}
	}
	return nil
}

// scanWays collects drivable ways and the node IDs they reference.
func (p *Parser) scanWays(ctx context.Context, r io.Reader) ([]*osm.Way, map[osm.NodeID]bool, error) {
	scanner := osmpbf.New(ctx, r, p.procs)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	var ways []*osm.Way
	wayNodes := make(map[osm.NodeID]bool)

	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !drivableHighways[way.Tags.Find("highway")] {
			continue
		}
		ways = append(ways, way)
		for _, wn := range way.Nodes {
			wayNodes[wn.ID] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning ways: %w", err)
	}
	return ways, wayNodes, nil
}

// scanNodes collects coordinates for the referenced node IDs.
func (p *Parser) scanNodes(ctx context.Context, r io.Reader, wanted map[osm.NodeID]bool) (map[osm.NodeID]geo.Coordinate, error) {
	scanner := osmpbf.New(ctx, r, p.procs)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	coords := make(map[osm.NodeID]geo.Coordinate, len(wanted))
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if !wanted[node.ID] {
			continue
		}
		coords[node.ID] = geo.Coordinate{Lat: node.Lat, Lon: node.Lon}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning nodes: %w", err)
	}
	return coords, nil
}

func isOneWay(way *osm.Way) bool {
	switch way.Tags.Find("oneway") {
	case "yes", "1", "true":
		return true
	}
	// Motorways default to one-way in OSM.
	return way.Tags.Find("highway") == "motorway"
}
