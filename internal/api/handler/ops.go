// Package handler provides HTTP handlers for the ChargeRoute API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker/v2"

	"github.com/chargeroute/chargeroute/internal/api/models"
	"github.com/chargeroute/chargeroute/internal/api/response"
	"github.com/chargeroute/chargeroute/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	db        *pgxpool.Pool
}

// NewOpsHandler creates a new OpsHandler. Registry and db may be nil; the
// corresponding checks are skipped.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, db *pgxpool.Pool) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		db:        db,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// Reports DEGRADED with a 503 when the database is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	code := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status = models.HealthStatusDegraded
			code = http.StatusServiceUnavailable
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := models.HealthStatusOK
		var detail *string
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = models.HealthStatusFail
			msg := err.Error()
			detail = &msg
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "postgres",
			Status: dbStatus,
			Detail: detail,
		})
	}

	if h.registry != nil {
		for _, ph := range h.registry.Snapshot() {
			status.Providers = append(status.Providers, providerStatus(ph))
			if !ph.Healthy() && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// providerStatus maps a registry health snapshot onto the API model.
func providerStatus(h resilience.Health) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider: h.Name,
		Status:   models.HealthStatusOK,
	}

	switch h.CircuitState {
	case gobreaker.StateOpen:
		ps.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		ps.Status = models.HealthStatusDegraded
	}

	if h.LastSuccessAt != nil {
		t := models.Timestamp(*h.LastSuccessAt)
		ps.LastSuccessAt = &t
	}
	if h.LastFailureAt != nil {
		t := models.Timestamp(*h.LastFailureAt)
		ps.LastFailureAt = &t
	}
	if h.LastError != "" {
		msg := h.LastError
		ps.Message = &msg
	}

	return ps
}
