package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chargeroute/chargeroute/internal/api/models"
	"github.com/chargeroute/chargeroute/internal/api/response"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/trips"
)

// TripsHandler handles saved-trip endpoints. All operations are scoped to the
// authenticated user.
type TripsHandler struct {
	tripsService *trips.Service
}

// NewTripsHandler creates a new TripsHandler.
func NewTripsHandler(tripsService *trips.Service) *TripsHandler {
	return &TripsHandler{
		tripsService: tripsService,
	}
}

// ListTrips handles GET /v1/me/trips - list the user's saved trips.
// Supports limit and offset query parameters.
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	page, err := h.tripsService.List(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w, r, "failed to list trips")
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}

// SaveTrip handles POST /v1/me/trips - save a trip with its computed plan.
func (h *TripsHandler) SaveTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var req models.SaveTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	trip, err := h.tripsService.Save(r.Context(), userID, trips.SaveTripInput{
		Name:               req.Name,
		Origin:             geo.Coordinate{Lat: req.Origin.Lat, Lon: req.Origin.Lon},
		Destination:        geo.Coordinate{Lat: req.Destination.Lat, Lon: req.Destination.Lon},
		BatteryPercent:     req.BatteryPercent,
		FullRangeKm:        req.FullRangeKm,
		BatteryCapacityKWh: req.BatteryCapacityKWh,
		Plan:               req.Plan,
	})
	if err != nil {
		if errors.Is(err, trips.ErrInvalidTrip) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "failed to save trip")
		return
	}

	response.Created(w, r, "/v1/me/trips/"+trip.ID, trip)
}

// GetTrip handles GET /v1/me/trips/{tripId} - fetch a saved trip.
func (h *TripsHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	tripID := chi.URLParam(r, "tripId")
	trip, err := h.tripsService.Get(r.Context(), userID, tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			response.NotFound(w, r, "trip not found")
			return
		}
		response.InternalError(w, r, "failed to load trip")
		return
	}

	response.JSON(w, r, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /v1/me/trips/{tripId} - delete a saved trip.
func (h *TripsHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	tripID := chi.URLParam(r, "tripId")
	if err := h.tripsService.Delete(r.Context(), userID, tripID); err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			response.NotFound(w, r, "trip not found")
			return
		}
		response.InternalError(w, r, "failed to delete trip")
		return
	}

	response.NoContent(w, r)
}

// queryInt parses an integer query parameter, falling back to def on absence
// or malformed input.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
