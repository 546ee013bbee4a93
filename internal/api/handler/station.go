package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/airquality"
	"github.com/greenroute/greenroute/internal/api/models"
	"github.com/greenroute/greenroute/internal/api/response"
)

// StationHandler serves the current air quality station snapshot.
type StationHandler struct {
	service *airquality.Service
	logger  zerolog.Logger
}

// NewStationHandler creates a StationHandler.
func NewStationHandler(service *airquality.Service, logger zerolog.Logger) *StationHandler {
	return &StationHandler{service: service, logger: logger}
}

// ListStations handles GET /v1/stations. Readings come from the cached
// snapshot, so repeated calls do not hit the upstream provider.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.CurrentSnapshot(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("station snapshot unavailable")
		response.ServiceUnavailable(w, r, "air quality data is currently unavailable")
		return
	}

	readings := snapshot.Readings()
	stations := make([]models.Station, len(readings))
	for i, s := range readings {
		stations[i] = models.Station{
			ID:         s.StationID,
			Name:       s.Name,
			Lat:        s.Lat,
			Lon:        s.Lon,
			AQI:        s.AQI,
			ObservedAt: s.ObservedAt,
		}
	}

	response.JSON(w, r, http.StatusOK, models.StationList{
		Stations:  stations,
		Provider:  snapshot.Provider,
		FetchedAt: snapshot.FetchedAt,
	})
}
