// Package geo provides geodesic primitives shared by the graph builder and
// the routing engine.
package geo

import (
	"github.com/golang/geo/s2"
)

// earthRadiusMeters is the mean Earth radius used to convert angular
// distances to meters.
const earthRadiusMeters = 6371000.0

// Coordinate represents a geographic point in WGS84.
type Coordinate struct {
	Lat float64
	Lon float64
}

// LineString is an ordered sequence of coordinates describing a road
// segment's path.
type LineString []Coordinate

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Coordinate) float64 {
	p := s2.LatLngFromDegrees(a.Lat, a.Lon)
	q := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p.Distance(q).Radians() * earthRadiusMeters
}

// Length returns the geodesic length of the line in meters.
// Lines with fewer than two points have zero length.
func (l LineString) Length() float64 {
	var total float64
	for i := 1; i < len(l); i++ {
		total += Distance(l[i-1], l[i])
	}
	return total
}

// Midpoint returns the point halfway along the line measured by arc length.
// For a single-point line the point itself is returned.
func (l LineString) Midpoint() Coordinate {
	if len(l) == 0 {
		return Coordinate{}
	}
	if len(l) == 1 {
		return l[0]
	}
	return l.PointAt(l.Length() / 2)
}

// PointAt returns the point at the given distance (meters) from the start of
// the line, clamped to the line's endpoints.
func (l LineString) PointAt(distance float64) Coordinate {
	if len(l) == 1 || distance <= 0 {
		return l[0]
	}

	var travelled float64
	for i := 1; i < len(l); i++ {
		seg := Distance(l[i-1], l[i])
		if travelled+seg >= distance && seg > 0 {
			frac := (distance - travelled) / seg
			return interpolate(l[i-1], l[i], frac)
		}
		travelled += seg
	}
	return l[len(l)-1]
}

// SamplePoints returns n points evenly spaced along the line by arc length,
// including both endpoints. n is clamped to a minimum of 2.
func (l LineString) SamplePoints(n int) []Coordinate {
	if len(l) == 0 {
		return nil
	}
	if n < 2 {
		n = 2
	}
	if len(l) == 1 {
		points := make([]Coordinate, n)
		for i := range points {
			points[i] = l[0]
		}
		return points
	}

	total := l.Length()
	points := make([]Coordinate, 0, n)
	for i := 0; i < n; i++ {
		d := total * float64(i) / float64(n-1)
		points = append(points, l.PointAt(d))
	}
	return points
}

// interpolate returns the point at fraction frac between a and b.
// Linear interpolation is sufficient at road-segment scale.
func interpolate(a, b Coordinate, frac float64) Coordinate {
	return Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*frac,
		Lon: a.Lon + (b.Lon-a.Lon)*frac,
	}
}
