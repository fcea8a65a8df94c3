package models

import "github.com/chargeroute/chargeroute/internal/planner"

// SaveTripRequest is the request body for saving a trip.
type SaveTripRequest struct {
	Name               string             `json:"name"`
	Origin             Point              `json:"origin"`
	Destination        Point              `json:"destination"`
	BatteryPercent     float64            `json:"batteryPercent"`
	FullRangeKm        float64            `json:"fullRangeKm"`
	BatteryCapacityKWh float64            `json:"batteryCapacityKwh"`
	Plan               *planner.RoutePlan `json:"plan,omitempty"`
}

// Validate validates the save trip request. Deeper validation happens in the
// trips service; this catches the obviously malformed payloads.
func (r *SaveTripRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{
			Field:   "name",
			Message: "name is required",
			Code:    "REQUIRED",
		})
	}
	if !r.Origin.Valid() {
		errors = append(errors, FieldError{
			Field:   "origin",
			Message: "origin coordinates are out of range",
			Code:    "INVALID",
		})
	}
	if !r.Destination.Valid() {
		errors = append(errors, FieldError{
			Field:   "destination",
			Message: "destination coordinates are out of range",
			Code:    "INVALID",
		})
	}

	return errors
}
