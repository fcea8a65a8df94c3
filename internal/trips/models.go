// Package trips persists saved journey plans per user.
package trips

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/planner"
)

// Sentinel errors for trip operations.
var (
	// ErrTripNotFound indicates the trip does not exist or is not visible to
	// the requesting user.
	ErrTripNotFound = errors.New("trip not found")
	// ErrInvalidTrip indicates a malformed trip payload.
	ErrInvalidTrip = errors.New("invalid trip")
)

// Trip is a saved journey: the request parameters plus the computed plan.
type Trip struct {
	// ID is the trip identifier.
	ID string `json:"id"`

	// UserID is the owning user. Trips are only visible to their owner.
	UserID string `json:"-"`

	// Name is the user-supplied label.
	Name string `json:"name"`

	// Origin and Destination are the trip endpoints.
	Origin      geo.Coordinate `json:"origin"`
	Destination geo.Coordinate `json:"destination"`

	// BatteryPercent, FullRangeKm, and BatteryCapacityKWh are the vehicle
	// parameters the plan was computed with.
	BatteryPercent     float64 `json:"battery_percent"`
	FullRangeKm        float64 `json:"full_range_km"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`

	// Plan is the computed itinerary at save time.
	Plan *planner.RoutePlan `json:"plan,omitempty"`

	// CreatedAt and UpdatedAt are set by the service.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveTripInput is the payload for saving a trip.
type SaveTripInput struct {
	Name               string             `json:"name"`
	Origin             geo.Coordinate     `json:"origin"`
	Destination        geo.Coordinate     `json:"destination"`
	BatteryPercent     float64            `json:"battery_percent"`
	FullRangeKm        float64            `json:"full_range_km"`
	BatteryCapacityKWh float64            `json:"battery_capacity_kwh"`
	Plan               *planner.RoutePlan `json:"plan,omitempty"`
}

// Validate checks the save payload.
func (in SaveTripInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTrip)
	}
	if err := in.Origin.Validate(); err != nil {
		return fmt.Errorf("%w: origin: %s", ErrInvalidTrip, err)
	}
	if err := in.Destination.Validate(); err != nil {
		return fmt.Errorf("%w: destination: %s", ErrInvalidTrip, err)
	}
	if in.BatteryPercent < 0 || in.BatteryPercent > 100 {
		return fmt.Errorf("%w: battery percent must be in [0, 100]", ErrInvalidTrip)
	}
	if in.FullRangeKm <= 0 {
		return fmt.Errorf("%w: full range must be positive", ErrInvalidTrip)
	}
	if in.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("%w: battery capacity must be positive", ErrInvalidTrip)
	}
	return nil
}
