package models

// ComputePlanRequest is the request body for computing a route plan.
type ComputePlanRequest struct {
	Origin             Point   `json:"origin"`
	Destination        Point   `json:"destination"`
	BatteryPercent     float64 `json:"batteryPercent"`
	FullRangeKm        float64 `json:"fullRangeKm"`
	BatteryCapacityKWh float64 `json:"batteryCapacityKwh"`
}

// Validate validates the plan request.
func (r *ComputePlanRequest) Validate() []FieldError {
	var errors []FieldError

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
	if r.BatteryPercent < 0 || r.BatteryPercent > 100 {
		errors = append(errors, FieldError{
			Field:   "batteryPercent",
			Message: "battery percent must be between 0 and 100",
			Code:    "OUT_OF_RANGE",
		})
	}
	if r.FullRangeKm <= 0 {
		errors = append(errors, FieldError{
			Field:   "fullRangeKm",
			Message: "full range must be positive",
			Code:    "OUT_OF_RANGE",
		})
	}
	if r.BatteryCapacityKWh <= 0 {
		errors = append(errors, FieldError{
			Field:   "batteryCapacityKwh",
			Message: "battery capacity must be positive",
			Code:    "OUT_OF_RANGE",
		})
	}

	return errors
}
