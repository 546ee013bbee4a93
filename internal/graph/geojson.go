package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/greenroute/greenroute/internal/geo"
)

// GeoJSON types for the enriched-edges layer. Each edge is a LineString
// feature whose properties carry the endpoint node IDs and the enriched
// attributes, matching the layout consumed by the visualization layer.

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   lineGeometry    `json:"geometry"`
	Properties edgeProperties  `json:"properties"`
}

type lineGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"` // [lon, lat] per GeoJSON
}

type edgeProperties struct {
	U      int64   `json:"u"`
	V      int64   `json:"v"`
	Length float64 `json:"length"`
	NDVI   float64 `json:"ndvi"`
	AQI    float64 `json:"aqi"`
}

// WriteGeoJSON serializes the graph's edges as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, g *Graph) error {
	fc := featureCollection{Type: "FeatureCollection"}
	for _, e := range g.Edges() {
		coords := make([][2]float64, len(e.Geometry))
		for i, c := range e.Geometry {
			coords[i] = [2]float64{c.Lon, c.Lat}
		}
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: lineGeometry{Type: "LineString", Coordinates: coords},
			Properties: edgeProperties{
				U:      e.From,
				V:      e.To,
				Length: e.Attrs.Length,
				NDVI:   e.Attrs.NDVI,
				AQI:    e.Attrs.AQI,
			},
		})
	}

	enc := json.NewEncoder(w)
	return enc.Encode(fc)
}

// ReadGeoJSON rebuilds a graph from an enriched-edges FeatureCollection.
// Node coordinates are recovered from the geometry endpoints.
func ReadGeoJSON(r io.Reader) (*Graph, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	g := New()
	for i, f := range fc.Features {
		if f.Geometry.Type != "LineString" || len(f.Geometry.Coordinates) < 2 {
			return nil, fmt.Errorf("feature %d: edge geometry must be a LineString with >= 2 points", i)
		}

		line := make(geo.LineString, len(f.Geometry.Coordinates))
		for j, c := range f.Geometry.Coordinates {
			line[j] = geo.Coordinate{Lon: c[0], Lat: c[1]}
		}

		first, last := line[0], line[len(line)-1]
		g.AddNode(Node{ID: f.Properties.U, Lat: first.Lat, Lon: first.Lon})
		g.AddNode(Node{ID: f.Properties.V, Lat: last.Lat, Lon: last.Lon})

		attrs := EdgeAttrs{
			Length: f.Properties.Length,
			NDVI:   f.Properties.NDVI,
			AQI:    f.Properties.AQI,
		}
		if _, err := g.AddEdge(f.Properties.U, f.Properties.V, attrs, line); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return g, nil
}
