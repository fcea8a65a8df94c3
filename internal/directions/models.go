// Package directions provides road-network routing between two points, with
// graceful degradation to straight-line geometry when the provider is down.
package directions

import (
	"context"
	"errors"
	"time"

	"github.com/chargeroute/chargeroute/internal/geo"
)

// Sentinel errors for directions operations.
var (
	// ErrProviderUnavailable indicates the provider is down or its circuit
	// breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no drivable route exists between the points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the provider quota has been exhausted.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates out-of-range coordinates.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider fetches road routes from an external directions API.
type Provider interface {
	// Route returns the driving route between two points.
	Route(ctx context.Context, origin, destination geo.Coordinate) (*RoadRoute, error)
	// Name returns the provider identifier for logging and health reporting.
	Name() string
}

// RoadRoute is a drivable route between two points.
type RoadRoute struct {
	// DistanceKm is the road-network distance.
	DistanceKm float64

	// Duration is the estimated driving time. Zero when Degraded.
	Duration time.Duration

	// Path is the route geometry, ordered origin to destination. A degraded
	// route carries exactly the two endpoints.
	Path []geo.Coordinate

	// Degraded marks a straight-line fallback produced without the
	// provider. Callers can also detect it as Duration == 0 with a
	// two-point Path.
	Degraded bool

	// Provider is the source of this route ("haversine" when Degraded).
	Provider string
}

// Error carries provider-specific detail for a failed directions call.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
