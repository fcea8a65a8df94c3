package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/battery"
	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
)

// Default planner tunables.
const (
	DefaultReservePercent             = 10.0
	DefaultDirectArrivalBufferPercent = 20.0
	DefaultChargeTargetBufferPercent  = 20.0
	DefaultMaxChargingStops           = 10
	DefaultTrafficDeratingFactor      = 0.95
	DefaultReachabilityRangeFactor    = 0.9
	DefaultFallbackWaypointFraction   = 0.85

	// fallbackWaypointSpeedKW is the assumed charger power at a synthesized
	// waypoint, the middle of the simulated speed tiers.
	fallbackWaypointSpeedKW = 45.0
)

// RouteFinder provides road routes between two points.
type RouteFinder interface {
	RoadRoute(ctx context.Context, origin, destination geo.Coordinate) (*directions.RoadRoute, error)
}

// StationFinder discovers charging stations near a point.
type StationFinder interface {
	FindNear(ctx context.Context, center geo.Coordinate) ([]stations.Candidate, error)
}

// Config holds the planner tunables. Zero values take the documented
// defaults.
type Config struct {
	// ReservePercent is the battery floor the plan must never go below.
	ReservePercent float64

	// DirectArrivalBufferPercent is the extra distance margin, as a percent
	// of the remaining leg, required before committing directly to the
	// destination.
	DirectArrivalBufferPercent float64

	// ChargeTargetBufferPercent is added on top of the reserve and the
	// destination cost when choosing a partial charge target.
	ChargeTargetBufferPercent float64

	// MaxChargingStops bounds the planning loop.
	MaxChargingStops int

	// TrafficDeratingFactor discounts the maximum safe distance for traffic
	// and routing overhead. Fixed rather than randomized so identical
	// requests produce identical plans.
	TrafficDeratingFactor float64

	// ReachabilityRangeFactor derates the vehicle range when costing the leg
	// to a candidate station, compensating for road distance exceeding the
	// great-circle estimate.
	ReachabilityRangeFactor float64

	// PathAdherenceWeight adds a score term rewarding candidates near the
	// road path. Zero disables the term.
	PathAdherenceWeight float64

	// DisableFallbackWaypoint declares failure instead of synthesizing a
	// waypoint when no discovered station is reachable.
	DisableFallbackWaypoint bool

	// FallbackWaypointFraction positions the synthesized waypoint at this
	// fraction of the maximum safe distance along the bearing to the
	// destination.
	FallbackWaypointFraction float64
}

func (c Config) withDefaults() Config {
	if c.ReservePercent == 0 {
		c.ReservePercent = DefaultReservePercent
	}
	if c.DirectArrivalBufferPercent == 0 {
		c.DirectArrivalBufferPercent = DefaultDirectArrivalBufferPercent
	}
	if c.ChargeTargetBufferPercent == 0 {
		c.ChargeTargetBufferPercent = DefaultChargeTargetBufferPercent
	}
	if c.MaxChargingStops == 0 {
		c.MaxChargingStops = DefaultMaxChargingStops
	}
	if c.TrafficDeratingFactor == 0 {
		c.TrafficDeratingFactor = DefaultTrafficDeratingFactor
	}
	if c.ReachabilityRangeFactor == 0 {
		c.ReachabilityRangeFactor = DefaultReachabilityRangeFactor
	}
	if c.FallbackWaypointFraction == 0 {
		c.FallbackWaypointFraction = DefaultFallbackWaypointFraction
	}
	return c
}

// ServiceConfig holds the planner's collaborators.
type ServiceConfig struct {
	// Directions provides road routes (required).
	Directions RouteFinder

	// Stations provides charging-station discovery (required).
	Stations StationFinder

	// Battery is the range and charging-time model. If nil, a model with
	// default tunables is used.
	Battery *battery.Model

	// Planner holds the planner tunables.
	Planner Config

	// Logger for planning operations.
	Logger zerolog.Logger
}

// Service runs the route planning state machine. Each invocation is an
// independent sequential computation; the service itself is stateless and
// safe for concurrent use.
type Service struct {
	directions RouteFinder
	stations   StationFinder
	battery    *battery.Model
	cfg        Config
	logger     zerolog.Logger
}

// NewService creates a planner service.
func NewService(cfg ServiceConfig) *Service {
	model := cfg.Battery
	if model == nil {
		model = battery.NewModel(battery.DefaultConfig())
	}

	return &Service{
		directions: cfg.Directions,
		stations:   cfg.Stations,
		battery:    model,
		cfg:        cfg.Planner.withDefaults(),
		logger:     cfg.Logger,
	}
}

// PlanRoute computes the itinerary for a trip. It returns an error only for
// invalid requests; infeasible trips come back as a RoutePlan with
// Success == false, a failure code, and the trace accumulated so far.
func (s *Service) PlanRoute(ctx context.Context, req PlanRequest) (*RoutePlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan := &RoutePlan{ID: uuid.NewString(), Trace: []string{}}
	current := req.Origin
	currentID := "origin"
	batteryPercent := req.BatteryPercent

	s.tracef(plan, "planning trip from (%.4f, %.4f) to (%.4f, %.4f) with %.1f%% battery, %.0f km range",
		req.Origin.Lat, req.Origin.Lon, req.Destination.Lat, req.Destination.Lon, req.BatteryPercent, req.FullRangeKm)

	for {
		if err := ctx.Err(); err != nil {
			s.tracef(plan, "planning cancelled: %v", err)
			plan.Warning = "planning cancelled before completion"
			s.finish(plan)
			return plan, nil
		}

		route, err := s.directions.RoadRoute(ctx, current, req.Destination)
		if err != nil {
			s.tracef(plan, "road routing failed: %v", err)
			plan.FailureCode = FailureDirectionsUnavailable
			plan.Warning = "road routing is unavailable"
			s.finish(plan)
			return plan, nil
		}

		maxSafeKm := s.battery.MaxSafeDistanceKm(batteryPercent, s.cfg.ReservePercent, req.BatteryCapacityKWh, req.FullRangeKm) *
			s.cfg.TrafficDeratingFactor

		s.tracef(plan, "at (%.4f, %.4f): %.1f km to destination, battery %.1f%%, max safe distance %.1f km",
			current.Lat, current.Lon, route.DistanceKm, batteryPercent, maxSafeKm)

		// Direct leg, with the arrival buffer on top of the raw distance.
		requiredKm := route.DistanceKm * (1 + s.cfg.DirectArrivalBufferPercent/100)
		if requiredKm <= maxSafeKm {
			batteryPercent = s.commitLeg(plan, currentID, "destination", current, req.Destination, route, batteryPercent, req.FullRangeKm)
			plan.Success = true
			plan.ArrivalBatteryPercent = batteryPercent
			s.tracef(plan, "destination directly reachable, arriving with %.1f%% battery", batteryPercent)
			s.finish(plan)
			return plan, nil
		}

		if len(plan.Stops) >= s.cfg.MaxChargingStops {
			// Best-effort final leg so the caller still sees a complete
			// itinerary and the projected arrival battery.
			batteryPercent = s.commitLeg(plan, currentID, "destination", current, req.Destination, route, batteryPercent, req.FullRangeKm)
			plan.ArrivalBatteryPercent = batteryPercent
			plan.Warning = fmt.Sprintf("maximum of %d charging stops reached before the destination was comfortably reachable", s.cfg.MaxChargingStops)
			if batteryPercent < s.cfg.ReservePercent {
				plan.Warning += fmt.Sprintf("; projected arrival battery %.1f%% is below the %.0f%% reserve", batteryPercent, s.cfg.ReservePercent)
			}
			s.tracef(plan, "stop limit reached, committing best-effort final leg arriving at %.1f%% battery", batteryPercent)
			s.finish(plan)
			return plan, nil
		}

		// Search around the furthest point we can safely reach on the path.
		searchPoint := directions.PointAlongRoute(route.Path, maxSafeKm)
		s.tracef(plan, "searching for charging stations near (%.4f, %.4f)", searchPoint.Lat, searchPoint.Lon)

		candidates, err := s.stations.FindNear(ctx, searchPoint)
		if err != nil {
			s.tracef(plan, "station search failed: %v", err)
			plan.FailureCode = FailureNoStationsFound
			plan.Warning = "charging station search is unavailable"
			s.finish(plan)
			return plan, nil
		}
		if len(candidates) == 0 {
			s.tracef(plan, "no charging stations found after exhausting the search radius")
			plan.FailureCode = FailureNoStationsFound
			plan.Warning = "no charging stations found along the route"
			s.finish(plan)
			return plan, nil
		}
		s.tracef(plan, "found %d candidate stations", len(candidates))

		toward := filterTowardDestination(candidates, current, req.Destination)
		reachable := s.filterReachable(toward, current, batteryPercent, req.FullRangeKm*s.cfg.ReachabilityRangeFactor)
		s.tracef(plan, "%d candidates make progress, %d are reachable on current battery", len(toward), len(reachable))

		var stop stations.Candidate
		var isWaypoint bool
		if best, ok := s.rank(reachable, req.Destination, route.Path); ok {
			stop = best
		} else {
			if s.cfg.DisableFallbackWaypoint {
				s.tracef(plan, "no reachable station and waypoint fallback is disabled")
				plan.FailureCode = FailureBatteryConstraintUnreachable
				plan.Warning = "no charging station is reachable on the current battery"
				s.finish(plan)
				return plan, nil
			}
			stop = s.fallbackWaypoint(plan, current, req.Destination, maxSafeKm)
			isWaypoint = true
		}

		// Drive to the stop.
		legRoute, err := s.directions.RoadRoute(ctx, current, stop.Location)
		if err != nil {
			s.tracef(plan, "road routing to station failed: %v", err)
			plan.FailureCode = FailureDirectionsUnavailable
			plan.Warning = "road routing is unavailable"
			s.finish(plan)
			return plan, nil
		}

		batteryPercent = s.commitLeg(plan, currentID, stop.ID, current, stop.Location, legRoute, batteryPercent, req.FullRangeKm)
		if batteryPercent < s.cfg.ReservePercent {
			s.tracef(plan, "leg to %s drains battery to %.1f%%, below the %.0f%% reserve", stop.Name, batteryPercent, s.cfg.ReservePercent)
		}

		// Partial charge: just enough to finish the trip with margin.
		neededPercent := battery.PercentForDistance(geo.DistanceKm(stop.Location, req.Destination), req.FullRangeKm)
		target := math.Min(100, neededPercent+s.cfg.ReservePercent+s.cfg.ChargeTargetBufferPercent)
		target = math.Max(target, batteryPercent)

		chargingTime := s.battery.ChargingTime(batteryPercent, target, stop.ChargingSpeedKW, req.BatteryCapacityKWh)

		plan.Stops = append(plan.Stops, ChargingStop{
			ID:                     stop.ID,
			Name:                   stop.Name,
			Location:               stop.Location,
			Vicinity:               stop.Vicinity,
			ChargingSpeedKW:        stop.ChargingSpeedKW,
			BatteryBeforePercent:   batteryPercent,
			BatteryAfterPercent:    target,
			ChargingTime:           chargingTime,
			WaitTime:               stop.WaitTime,
			DistanceFromPreviousKm: legRoute.DistanceKm,
			MetadataSynthetic:      stop.MetadataSynthetic,
			Waypoint:               isWaypoint,
		})
		plan.Totals.ChargingTime += chargingTime
		plan.Totals.WaitTime += stop.WaitTime

		s.tracef(plan, "charging at %s (%.0f kW) from %.1f%% to %.1f%% in %s",
			stop.Name, stop.ChargingSpeedKW, batteryPercent, target, chargingTime.Round(time.Minute))

		batteryPercent = target
		current = stop.Location
		currentID = stop.ID
	}
}

// commitLeg appends a segment, accumulates totals, and returns the battery
// percent after the leg.
func (s *Service) commitLeg(plan *RoutePlan, fromID, toID string, from, to geo.Coordinate, route *directions.RoadRoute, batteryPercent, fullRangeKm float64) float64 {
	cost := battery.PercentForDistance(route.DistanceKm, fullRangeKm)
	arrival := batteryPercent - cost

	plan.Segments = append(plan.Segments, RouteSegment{
		FromID:                    fromID,
		ToID:                      toID,
		From:                      from,
		To:                        to,
		DistanceKm:                route.DistanceKm,
		DrivingDuration:           route.Duration,
		BatteryAtDeparturePercent: batteryPercent,
		BatteryAtArrivalPercent:   arrival,
		Degraded:                  route.Degraded,
	})
	plan.Totals.DrivingTime += route.Duration
	plan.TotalDistanceKm += route.DistanceKm

	return arrival
}

// fallbackWaypoint synthesizes a virtual charging stop along the bearing to
// the destination when no real station is reachable.
func (s *Service) fallbackWaypoint(plan *RoutePlan, current, destination geo.Coordinate, maxSafeKm float64) stations.Candidate {
	distance := maxSafeKm * s.cfg.FallbackWaypointFraction
	bearing := geo.BearingDegrees(current, destination)
	location := geo.DestinationPoint(current, distance, bearing)

	s.tracef(plan, "no reachable station, synthesizing waypoint %.1f km out at bearing %.0f", distance, bearing)

	return stations.Candidate{
		ID:                fmt.Sprintf("waypoint-%d", len(plan.Stops)+1),
		Name:              "Estimated charging waypoint",
		Location:          location,
		ChargingSpeedKW:   fallbackWaypointSpeedKW,
		MetadataSynthetic: true,
	}
}

func (s *Service) finish(plan *RoutePlan) {
	plan.Totals.TripTime = plan.Totals.DrivingTime + plan.Totals.ChargingTime + plan.Totals.WaitTime

	s.logger.Info().
		Str("plan_id", plan.ID).
		Bool("success", plan.Success).
		Str("failure_code", plan.FailureCode).
		Int("stops", len(plan.Stops)).
		Float64("total_distance_km", plan.TotalDistanceKm).
		Msg("route plan computed")
}

func (s *Service) tracef(plan *RoutePlan, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	plan.Trace = append(plan.Trace, line)
	s.logger.Debug().Str("plan_id", plan.ID).Msg(line)
}
