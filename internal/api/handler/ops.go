package handler

import (
	"net/http"
	"time"

	"github.com/greenroute/greenroute/internal/api/models"
	"github.com/greenroute/greenroute/internal/api/response"
)

// ReadyCheck reports whether a subsystem is ready to serve.
type ReadyCheck func() error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	checks    map[string]ReadyCheck
}

// NewOpsHandler creates an OpsHandler. The checks map keys name the
// subsystems reported by the readiness endpoint.
func NewOpsHandler(version, buildTime string, checks map[string]ReadyCheck) *OpsHandler {
	return &OpsHandler{version: version, buildTime: buildTime, checks: checks}
}

// HealthCheck handles GET /v1/ops/health, the liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It runs every configured
// subsystem check and degrades the status when any fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	httpStatus := http.StatusOK
	details := make(map[string]interface{}, len(h.checks))

	for name, check := range h.checks {
		if err := check(); err != nil {
			status = models.HealthStatusDegraded
			httpStatus = http.StatusServiceUnavailable
			details[name] = err.Error()
		} else {
			details[name] = "ok"
		}
	}

	response.JSON(w, r, httpStatus, models.Health{
		Status:  status,
		Time:    time.Now(),
		Details: details,
	})
}
