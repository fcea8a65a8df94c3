package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chargeroute/chargeroute/internal/api/models"
	"github.com/chargeroute/chargeroute/internal/api/response"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/planner"
)

// PlanHandler handles route-plan computation.
type PlanHandler struct {
	planner *planner.Service
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(plannerService *planner.Service) *PlanHandler {
	return &PlanHandler{
		planner: plannerService,
	}
}

// ComputePlan handles POST /v1/plans:compute - compute a charging itinerary.
//
// Infeasible trips are not errors: the response is a 200 with success=false
// and a failure code, so clients can surface the partial plan and trace.
func (h *PlanHandler) ComputePlan(w http.ResponseWriter, r *http.Request) {
	var req models.ComputePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	plan, err := h.planner.PlanRoute(r.Context(), planner.PlanRequest{
		Origin:             geo.Coordinate{Lat: req.Origin.Lat, Lon: req.Origin.Lon},
		Destination:        geo.Coordinate{Lat: req.Destination.Lat, Lon: req.Destination.Lon},
		BatteryPercent:     req.BatteryPercent,
		FullRangeKm:        req.FullRangeKm,
		BatteryCapacityKWh: req.BatteryCapacityKWh,
	})
	if err != nil {
		if errors.Is(err, planner.ErrInvalidRequest) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "route planning failed")
		return
	}

	response.JSON(w, r, http.StatusOK, plan)
}
