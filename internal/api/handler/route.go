// Package handler provides HTTP handlers for the GreenRoute API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/twpayne/go-polyline"

	"github.com/greenroute/greenroute/internal/api/models"
	"github.com/greenroute/greenroute/internal/api/response"
	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/poi"
	"github.com/greenroute/greenroute/internal/routing"
)

// defaultPOIBuffer is the corridor width for POI lookup, meters.
const defaultPOIBuffer = 300

// RouteHandler handles route comparison endpoints.
type RouteHandler struct {
	engine *routing.Engine
	pois   *poi.Index
	logger zerolog.Logger
}

// NewRouteHandler creates a RouteHandler. The POI index may be nil, in
// which case responses carry no POIs.
func NewRouteHandler(engine *routing.Engine, pois *poi.Index, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{engine: engine, pois: pois, logger: logger}
}

// CompareRoutes handles POST /v1/routes/compare. Both the shortest and the
// greenest path between the snapped endpoints are computed over the same
// graph and returned side by side.
func (h *RouteHandler) CompareRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "invalid route query", errs)
		return
	}

	origin := geo.Coordinate{Lat: req.Origin.Lat, Lon: req.Origin.Lon}
	destination := geo.Coordinate{Lat: req.Destination.Lat, Lon: req.Destination.Lon}

	pair, err := h.engine.RoutesBetween(origin, destination)
	if err != nil {
		h.writeRoutingError(w, r, err)
		return
	}

	resp := models.CompareRoutesResponse{
		Shortest: summarize(pair.Shortest),
		Greenest: summarize(pair.Greenest),
	}
	if h.pois != nil {
		buffer := req.POIBufferMeters
		if buffer == 0 {
			buffer = defaultPOIBuffer
		}
		resp.POIs = poisAlong(h.pois, pair.Greenest.Geometry, buffer)
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func (h *RouteHandler) writeRoutingError(w http.ResponseWriter, r *http.Request, err error) {
	var noPath *routing.NoPathError
	switch {
	case errors.As(err, &noPath):
		response.NoRoute(w, r, noPath.Error())
	case errors.Is(err, routing.ErrEmptyGraph):
		response.ServiceUnavailable(w, r, "road graph not loaded")
	default:
		h.logger.Error().Err(err).Msg("route comparison failed")
		response.InternalError(w, r, "route computation failed")
	}
}

// summarize converts a path into its wire representation, encoding the
// geometry as a Google polyline.
func summarize(res routing.PathResult) models.RouteSummary {
	coords := make([][]float64, len(res.Geometry))
	for i, c := range res.Geometry {
		coords[i] = []float64{c.Lat, c.Lon}
	}
	return models.RouteSummary{
		NodeIDs:      res.Nodes,
		Polyline:     string(polyline.EncodeCoords(coords)),
		LengthMeters: res.TotalLength,
		MeanNDVI:     res.MeanNDVI,
		MeanAQI:      res.MeanAQI,
		GreenCost:    res.GreenCost,
	}
}

func poisAlong(index *poi.Index, route geo.LineString, buffer float64) []models.RoutePOI {
	found := index.AlongRoute(route, buffer)
	if len(found) == 0 {
		return nil
	}
	out := make([]models.RoutePOI, len(found))
	for i, p := range found {
		out[i] = models.RoutePOI{
			Name:     p.Name,
			Category: string(p.Category),
			Lat:      p.Lat,
			Lon:      p.Lon,
		}
	}
	return out
}
