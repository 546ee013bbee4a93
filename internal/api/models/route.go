package models

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CompareRoutesRequest is the body of POST /v1/routes/compare.
type CompareRoutesRequest struct {
	Origin      Point `json:"origin"`
	Destination Point `json:"destination"`

	// POIBufferMeters widens or narrows the corridor searched for points of
	// interest along the greener route. Zero means the server default.
	POIBufferMeters float64 `json:"poiBufferMeters,omitempty"`
}

// Validate returns field errors for out-of-range coordinates.
func (req *CompareRoutesRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendPointErrors(errs, "origin", req.Origin)
	errs = appendPointErrors(errs, "destination", req.Destination)
	if req.POIBufferMeters < 0 {
		errs = append(errs, FieldError{
			Field:   "poiBufferMeters",
			Message: "must not be negative",
			Code:    "out_of_range",
		})
	}
	return errs
}

func appendPointErrors(errs []FieldError, field string, p Point) []FieldError {
	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, FieldError{
			Field:   field + ".lat",
			Message: "latitude must be between -90 and 90",
			Code:    "out_of_range",
		})
	}
	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, FieldError{
			Field:   field + ".lon",
			Message: "longitude must be between -180 and 180",
			Code:    "out_of_range",
		})
	}
	return errs
}

// RouteSummary describes one computed route.
type RouteSummary struct {
	// NodeIDs is the intersection sequence of the route.
	NodeIDs []int64 `json:"nodeIds"`

	// Polyline is the route geometry in Google encoded polyline format.
	Polyline string `json:"polyline"`

	// LengthMeters is the total geodesic length.
	LengthMeters float64 `json:"lengthMeters"`

	// MeanNDVI is the average vegetation index over the traversed edges.
	MeanNDVI float64 `json:"meanNdvi"`

	// MeanAQI is the average air quality index over the traversed edges.
	MeanAQI float64 `json:"meanAqi"`

	// GreenCost is the combined environmental cost of the route.
	GreenCost float64 `json:"greenCost"`
}

// RoutePOI is a point of interest near the greener route.
type RoutePOI struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// CompareRoutesResponse is the body of a successful route comparison.
type CompareRoutesResponse struct {
	Shortest RouteSummary `json:"shortest"`
	Greenest RouteSummary `json:"greenest"`

	// POIs lists parks, EV chargers, and metro stations near the greener
	// route, when a POI index is configured.
	POIs []RoutePOI `json:"pois,omitempty"`
}
