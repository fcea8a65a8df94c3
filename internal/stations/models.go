// Package stations provides charging-station discovery around a point, with
// a widening radius search and optional synthesis of charger metadata when
// the upstream source does not report power or queue information.
package stations

import (
	"context"
	"errors"
	"time"

	"github.com/chargeroute/chargeroute/internal/geo"
)

// Sentinel errors for station operations.
var (
	// ErrProviderUnavailable indicates the provider is down or its circuit
	// breaker is open.
	ErrProviderUnavailable = errors.New("stations provider unavailable")
	// ErrRateLimitExceeded indicates the provider quota has been exhausted.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidLocation indicates out-of-range search coordinates.
	ErrInvalidLocation = errors.New("invalid search location")
)

// Provider fetches charging stations near a point from an external API.
type Provider interface {
	// Nearby returns charging stations within radiusKm of center. Stations
	// without charger metadata are returned with zero ChargingSpeedKW.
	Nearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Candidate, error)
	// Name returns the provider identifier for logging and health reporting.
	Name() string
}

// Candidate is a charging station considered for a stop.
type Candidate struct {
	// ID is the provider's stable identifier for the station.
	ID string `json:"id"`

	// Name is the human-readable station name.
	Name string `json:"name"`

	// Location is the station position.
	Location geo.Coordinate `json:"location"`

	// Vicinity is a short human-readable locality description.
	Vicinity string `json:"vicinity,omitempty"`

	// ChargingSpeedKW is the charger power. Zero means unknown.
	ChargingSpeedKW float64 `json:"charging_speed_kw"`

	// WaitTime is the expected queue time before charging starts.
	WaitTime time.Duration `json:"wait_time"`

	// MetadataSynthetic is true when ChargingSpeedKW and WaitTime were
	// simulated rather than reported by the provider.
	MetadataSynthetic bool `json:"metadata_synthetic"`
}

// Error carries provider-specific detail for a failed stations call.
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
