// Package planner computes EV journey plans: given origin, destination, and
// battery state it decides whether the destination is directly reachable and,
// if not, iteratively selects charging stops until the trip is feasible or
// declared infeasible.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/chargeroute/chargeroute/internal/geo"
)

// ErrInvalidRequest indicates a malformed plan request. No planning work is
// performed for invalid requests.
var ErrInvalidRequest = errors.New("invalid plan request")

// Failure codes for infeasible plans. These are carried on the RoutePlan, not
// returned as errors, so callers can render the partial plan and trace.
const (
	// FailureDirectionsUnavailable means road routing failed outright.
	FailureDirectionsUnavailable = "DIRECTIONS_UNAVAILABLE"
	// FailureNoStationsFound means the widening station search was exhausted
	// without a single candidate.
	FailureNoStationsFound = "NO_STATIONS_FOUND"
	// FailureBatteryConstraintUnreachable means candidates exist but none can
	// be reached on the current battery.
	FailureBatteryConstraintUnreachable = "BATTERY_CONSTRAINT_UNREACHABLE"
)

// PlanRequest is the input to a planning invocation.
type PlanRequest struct {
	// Origin is the trip start.
	Origin geo.Coordinate `json:"origin"`

	// Destination is the trip end.
	Destination geo.Coordinate `json:"destination"`

	// BatteryPercent is the state of charge at departure, in [0, 100].
	BatteryPercent float64 `json:"battery_percent"`

	// FullRangeKm is the vehicle's rated range on a full battery.
	FullRangeKm float64 `json:"full_range_km"`

	// BatteryCapacityKWh is the usable battery capacity.
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
}

// Validate checks the request against the documented input ranges.
func (r PlanRequest) Validate() error {
	if err := r.Origin.Validate(); err != nil {
		return fmt.Errorf("%w: origin: %s", ErrInvalidRequest, err)
	}
	if err := r.Destination.Validate(); err != nil {
		return fmt.Errorf("%w: destination: %s", ErrInvalidRequest, err)
	}
	if r.BatteryPercent < 0 || r.BatteryPercent > 100 {
		return fmt.Errorf("%w: battery percent must be in [0, 100], got %g", ErrInvalidRequest, r.BatteryPercent)
	}
	if r.FullRangeKm <= 0 {
		return fmt.Errorf("%w: full range must be positive, got %g", ErrInvalidRequest, r.FullRangeKm)
	}
	if r.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("%w: battery capacity must be positive, got %g", ErrInvalidRequest, r.BatteryCapacityKWh)
	}
	return nil
}

// ChargingStop is a committed charging stop on the itinerary.
type ChargingStop struct {
	// ID is the station identifier, or a synthetic waypoint identifier when
	// no real station could be reached.
	ID string `json:"id"`

	// Name is the station name.
	Name string `json:"name"`

	// Location is the stop position.
	Location geo.Coordinate `json:"location"`

	// Vicinity is a short locality description, when known.
	Vicinity string `json:"vicinity,omitempty"`

	// ChargingSpeedKW is the charger power used for the time estimate.
	ChargingSpeedKW float64 `json:"charging_speed_kw"`

	// BatteryBeforePercent is the state of charge on arrival.
	BatteryBeforePercent float64 `json:"battery_before_percent"`

	// BatteryAfterPercent is the state of charge at departure.
	BatteryAfterPercent float64 `json:"battery_after_percent"`

	// ChargingTime is the estimated time on the charger.
	ChargingTime time.Duration `json:"charging_time"`

	// WaitTime is the estimated queue time before charging.
	WaitTime time.Duration `json:"wait_time"`

	// DistanceFromPreviousKm is the leg distance from the previous position.
	DistanceFromPreviousKm float64 `json:"distance_from_previous_km"`

	// MetadataSynthetic marks simulated charger speed and wait time.
	MetadataSynthetic bool `json:"metadata_synthetic"`

	// Waypoint marks a synthesized fallback waypoint rather than a
	// discovered station.
	Waypoint bool `json:"waypoint,omitempty"`
}

// RouteSegment is one driven leg of the itinerary, in chronological order.
type RouteSegment struct {
	// FromID and ToID identify the endpoints ("origin", a stop ID, or
	// "destination").
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`

	// From and To are the endpoint positions.
	From geo.Coordinate `json:"from"`
	To   geo.Coordinate `json:"to"`

	// DistanceKm is the leg distance.
	DistanceKm float64 `json:"distance_km"`

	// DrivingDuration is the estimated driving time. Zero when Degraded.
	DrivingDuration time.Duration `json:"driving_duration"`

	// BatteryAtDeparturePercent and BatteryAtArrivalPercent bracket the leg.
	BatteryAtDeparturePercent float64 `json:"battery_at_departure_percent"`
	BatteryAtArrivalPercent   float64 `json:"battery_at_arrival_percent"`

	// Degraded marks a leg measured on straight-line geometry because the
	// directions provider was unavailable.
	Degraded bool `json:"degraded,omitempty"`
}

// Totals aggregates plan timing.
type Totals struct {
	DrivingTime  time.Duration `json:"driving_time"`
	ChargingTime time.Duration `json:"charging_time"`
	WaitTime     time.Duration `json:"wait_time"`
	TripTime     time.Duration `json:"trip_time"`
}

// RoutePlan is the planner's output. Infeasibility is expressed as
// Success == false with a failure code or warning, never as an error, so the
// caller can still render the partial itinerary and trace.
type RoutePlan struct {
	// ID identifies this planning invocation.
	ID string `json:"id"`

	// Stops are the committed charging stops, in visit order.
	Stops []ChargingStop `json:"stops"`

	// Segments are the driven legs, in chronological order.
	Segments []RouteSegment `json:"segments"`

	// Totals aggregates driving, charging, and wait time.
	Totals Totals `json:"totals"`

	// Success is true when the plan reaches the destination within all
	// battery constraints.
	Success bool `json:"success"`

	// FailureCode is set on infeasible plans.
	FailureCode string `json:"failure_code,omitempty"`

	// Warning carries a human-readable caveat, set on failures and on
	// best-effort partial plans.
	Warning string `json:"warning,omitempty"`

	// ArrivalBatteryPercent is the projected state of charge at the
	// destination, when a final leg was committed.
	ArrivalBatteryPercent float64 `json:"arrival_battery_percent"`

	// TotalDistanceKm is the sum of segment distances.
	TotalDistanceKm float64 `json:"total_distance_km"`

	// Trace documents each planning decision in order. Always populated,
	// including on aborts.
	Trace []string `json:"trace"`
}
