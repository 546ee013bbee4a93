// Package poi indexes points of interest (parks, EV charging, metro
// stations) and answers proximity queries along a route.
package poi

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/greenroute/greenroute/internal/geo"
)

// Category classifies a point of interest.
type Category string

const (
	CategoryPark       Category = "park"
	CategoryEVCharging Category = "ev_charging"
	CategoryMetro      Category = "metro"
)

// POI is a named point of interest.
type POI struct {
	Name     string
	Category Category
	Lat      float64
	Lon      float64
}

// entryTol is the degenerate rectangle side for point entries, degrees.
const entryTol = 0.0001

type poiEntry struct {
	location rtreego.Point
	poi      POI
}

func (p *poiEntry) Bounds() rtreego.Rect {
	return p.location.ToRect(entryTol)
}

// Index is a spatial index over POIs.
type Index struct {
	tree *rtreego.Rtree
}

// NewIndex builds an index over the given POIs.
func NewIndex(pois []POI) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, p := range pois {
		tree.Insert(&poiEntry{
			location: rtreego.Point{p.Lon, p.Lat},
			poi:      p,
		})
	}
	return &Index{tree: tree}
}

// AlongRoute returns the POIs within bufferMeters of the route polyline,
// in index order.
func (i *Index) AlongRoute(route geo.LineString, bufferMeters float64) []POI {
	if len(route) < 2 || bufferMeters <= 0 {
		return nil
	}

	// Coarse pass: r-tree query over the route's bounding box expanded by
	// the buffer, then an exact distance check per candidate.
	rect := routeRect(route, bufferMeters)
	candidates := i.tree.SearchIntersect(rect)

	var result []POI
	for _, c := range candidates {
		p := c.(*poiEntry).poi
		if distanceToRoute(geo.Coordinate{Lat: p.Lat, Lon: p.Lon}, route) <= bufferMeters {
			result = append(result, p)
		}
	}
	return result
}

// routeRect computes the route's bounding rectangle padded by the buffer.
func routeRect(route geo.LineString, bufferMeters float64) rtreego.Rect {
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, c := range route {
		minLat = math.Min(minLat, c.Lat)
		minLon = math.Min(minLon, c.Lon)
		maxLat = math.Max(maxLat, c.Lat)
		maxLon = math.Max(maxLon, c.Lon)
	}

	// One degree of latitude is ~111km; longitude shrinks with latitude.
	padLat := bufferMeters / 111000
	padLon := padLat / math.Cos((minLat+maxLat)/2*math.Pi/180)

	rect, _ := rtreego.NewRect(
		rtreego.Point{minLon - padLon, minLat - padLat},
		[]float64{(maxLon - minLon) + 2*padLon, (maxLat - minLat) + 2*padLat},
	)
	return rect
}

// distanceToRoute returns the minimum distance in meters from the point to
// any segment of the route, using a local equirectangular approximation
// that is accurate at city scale.
func distanceToRoute(p geo.Coordinate, route geo.LineString) float64 {
	best := math.Inf(1)
	for i := 1; i < len(route); i++ {
		if d := pointToSegment(p, route[i-1], route[i]); d < best {
			best = d
		}
	}
	return best
}

func pointToSegment(p, a, b geo.Coordinate) float64 {
	// Project onto a plane centered at p.
	cosLat := math.Cos(p.Lat * math.Pi / 180)
	ax, ay := (a.Lon-p.Lon)*cosLat, a.Lat-p.Lat
	bx, by := (b.Lon-p.Lon)*cosLat, b.Lat-p.Lat

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = -(ax*dx + ay*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy

	// Degrees back to meters.
	return math.Sqrt(cx*cx+cy*cy) * 111000
}

// GeoJSON point-layer loading, matching the files produced by the POI
// export step.

type pointFeatureCollection struct {
	Type     string         `json:"type"`
	Features []pointFeature `json:"features"`
}

type pointFeature struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// ReadGeoJSON reads a Point FeatureCollection and tags every feature with
// the given category. Non-point features are skipped.
func ReadGeoJSON(r io.Reader, category Category) ([]POI, error) {
	var fc pointFeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding POI collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	var pois []POI
	for _, f := range fc.Features {
		if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		pois = append(pois, POI{
			Name:     f.Properties.Name,
			Category: category,
			Lon:      f.Geometry.Coordinates[0],
			Lat:      f.Geometry.Coordinates[1],
		})
	}
	return pois, nil
}
