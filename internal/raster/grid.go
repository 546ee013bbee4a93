// Package raster provides read-only access to a greenness (NDVI) raster
// grid, including point and line sampling used during graph enrichment.
package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/greenroute/greenroute/internal/geo"
)

// Sampling errors.
var (
	// ErrOutOfBounds indicates the queried coordinate lies outside the
	// raster extent or only hits nodata cells.
	ErrOutOfBounds = errors.New("coordinate outside raster extent")
)

// Extent is the geographic bounding box covered by a grid, in WGS84.
type Extent struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Contains reports whether the point lies within the extent.
func (e Extent) Contains(c geo.Coordinate) bool {
	return c.Lat >= e.MinLat && c.Lat <= e.MaxLat &&
		c.Lon >= e.MinLon && c.Lon <= e.MaxLon
}

// Grid is an in-memory single-band raster with a north-up affine transform.
// Values are stored row-major with row 0 at the northern edge, matching the
// layout of GeoTIFF exports. A Grid is immutable after construction.
type Grid struct {
	width   int
	height  int
	extent  Extent
	nodata  float64
	values  []float64
	pixelW  float64 // degrees of longitude per column
	pixelH  float64 // degrees of latitude per row
}

// NewGrid constructs a grid from row-major values. The number of values must
// equal width*height.
func NewGrid(width, height int, extent Extent, nodata float64, values []float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("grid expects %d values, got %d", width*height, len(values))
	}
	if extent.MaxLat <= extent.MinLat || extent.MaxLon <= extent.MinLon {
		return nil, fmt.Errorf("degenerate extent %+v", extent)
	}
	return &Grid{
		width:  width,
		height: height,
		extent: extent,
		nodata: nodata,
		values: values,
		pixelW: (extent.MaxLon - extent.MinLon) / float64(width),
		pixelH: (extent.MaxLat - extent.MinLat) / float64(height),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Extent returns the geographic bounding box of the grid.
func (g *Grid) Extent() Extent { return g.extent }

// ValueAt returns the cell value under the coordinate using nearest-pixel
// lookup. Returns ErrOutOfBounds for coordinates outside the extent and for
// nodata cells, so a raw nodata marker never leaks to callers.
func (g *Grid) ValueAt(c geo.Coordinate) (float64, error) {
	if !g.extent.Contains(c) {
		return 0, ErrOutOfBounds
	}

	col := int((c.Lon - g.extent.MinLon) / g.pixelW)
	row := int((g.extent.MaxLat - c.Lat) / g.pixelH)
	if col >= g.width {
		col = g.width - 1
	}
	if row >= g.height {
		row = g.height - 1
	}

	v := g.values[row*g.width+col]
	if v == g.nodata || math.IsNaN(v) {
		return 0, ErrOutOfBounds
	}
	return v, nil
}

// BilinearValueAt interpolates the value under the coordinate from the four
// surrounding pixel centers. Nodata neighbors are excluded and the weights
// renormalized over the valid ones; when all four are nodata it returns
// ErrOutOfBounds, matching ValueAt.
func (g *Grid) BilinearValueAt(c geo.Coordinate) (float64, error) {
	if !g.extent.Contains(c) {
		return 0, ErrOutOfBounds
	}

	// Fractional position in pixel-center space; clamped so coordinates
	// near the extent edge interpolate within the outermost cells.
	x := (c.Lon-g.extent.MinLon)/g.pixelW - 0.5
	y := (g.extent.MaxLat-c.Lat)/g.pixelH - 0.5
	x = math.Max(0, math.Min(x, float64(g.width-1)))
	y = math.Max(0, math.Min(y, float64(g.height-1)))

	col0, row0 := int(x), int(y)
	col1, row1 := col0+1, row0+1
	if col1 > g.width-1 {
		col1 = g.width - 1
	}
	if row1 > g.height-1 {
		row1 = g.height - 1
	}
	fx, fy := x-float64(col0), y-float64(row0)

	cells := [4]struct {
		col, row int
		weight   float64
	}{
		{col0, row0, (1 - fx) * (1 - fy)},
		{col1, row0, fx * (1 - fy)},
		{col0, row1, (1 - fx) * fy},
		{col1, row1, fx * fy},
	}

	var sum, weight float64
	for _, cell := range cells {
		v := g.values[cell.row*g.width+cell.col]
		if v == g.nodata || math.IsNaN(v) {
			continue
		}
		sum += v * cell.weight
		weight += cell.weight
	}
	if weight == 0 {
		return 0, ErrOutOfBounds
	}
	return sum / weight, nil
}
