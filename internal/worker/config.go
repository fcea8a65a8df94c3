// Package worker provides background job processing for ChargeRoute.
package worker

import (
	"time"
)

// PrewarmTarget represents a driving corridor to prewarm.
type PrewarmTarget struct {
	// Name is the human-readable name of the corridor.
	Name string

	// Points are the lat/lon waypoints along the corridor, in driving
	// order. Consecutive pairs form the legs whose routes get warmed.
	Points []Point

	// Priority determines prewarm order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// PrewarmConfig holds configuration for the corridor prewarm job.
type PrewarmConfig struct {
	// Targets are the corridors to prewarm.
	// If empty, uses DefaultPrewarmTargets.
	Targets []PrewarmTarget

	// Concurrency is the number of concurrent prewarm operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each prewarm operation.
	// Default: 30 seconds
	Timeout time.Duration

	// PrewarmDirections enables road-route cache warming for corridor legs.
	// Default: true
	PrewarmDirections bool

	// PrewarmStations enables charging-station discovery warming.
	// Default: true
	PrewarmStations bool
}

// DefaultPrewarmConfig returns the default prewarm configuration.
func DefaultPrewarmConfig() PrewarmConfig {
	return PrewarmConfig{
		Targets:           DefaultPrewarmTargets(),
		Concurrency:       3,
		Timeout:           30 * time.Second,
		PrewarmDirections: true,
		PrewarmStations:   true,
	}
}

// DefaultPrewarmTargets returns the default prewarm corridors.
// Focuses on the long-distance motorway corridors where EV drivers most
// often need a charging stop.
func DefaultPrewarmTargets() []PrewarmTarget {
	return []PrewarmTarget{
		{
			Name:     "A2 Amsterdam - Maastricht",
			Priority: 1,
			Points: []Point{
				{Lat: 52.3676, Lon: 4.9041}, // Amsterdam
				{Lat: 52.0894, Lon: 5.1102}, // Utrecht
				{Lat: 51.6978, Lon: 5.3037}, // 's-Hertogenbosch
				{Lat: 51.4416, Lon: 5.4697}, // Eindhoven
				{Lat: 50.8514, Lon: 5.6910}, // Maastricht
			},
		},
		{
			Name:     "A4 Amsterdam - Antwerpen",
			Priority: 1,
			Points: []Point{
				{Lat: 52.3676, Lon: 4.9041}, // Amsterdam
				{Lat: 52.0705, Lon: 4.3007}, // Den Haag
				{Lat: 51.9244, Lon: 4.4777}, // Rotterdam
				{Lat: 51.4950, Lon: 4.2871}, // Bergen op Zoom
				{Lat: 51.2194, Lon: 4.4025}, // Antwerpen
			},
		},
		{
			Name:     "A1 Amsterdam - Osnabrueck",
			Priority: 2,
			Points: []Point{
				{Lat: 52.3676, Lon: 4.9041}, // Amsterdam
				{Lat: 52.1530, Lon: 5.3711}, // Amersfoort
				{Lat: 52.2125, Lon: 6.0094}, // Apeldoorn
				{Lat: 52.2215, Lon: 6.8937}, // Enschede
				{Lat: 52.2799, Lon: 8.0472}, // Osnabrueck
			},
		},
		{
			Name:     "A12 Den Haag - Oberhausen",
			Priority: 2,
			Points: []Point{
				{Lat: 52.0705, Lon: 4.3007}, // Den Haag
				{Lat: 52.0894, Lon: 5.1102}, // Utrecht
				{Lat: 51.9851, Lon: 5.8987}, // Arnhem
				{Lat: 51.4696, Lon: 6.8514}, // Oberhausen
			},
		},
		{
			Name:     "A7 Amsterdam - Groningen",
			Priority: 3,
			Points: []Point{
				{Lat: 52.3676, Lon: 4.9041}, // Amsterdam
				{Lat: 52.6324, Lon: 4.7534}, // Alkmaar junction
				{Lat: 52.9614, Lon: 5.9195}, // Heerenveen
				{Lat: 53.2194, Lon: 6.5665}, // Groningen
			},
		},
		{
			Name:     "A16 Rotterdam - Breda",
			Priority: 3,
			Points: []Point{
				{Lat: 51.9244, Lon: 4.4777}, // Rotterdam
				{Lat: 51.8133, Lon: 4.6901}, // Dordrecht
				{Lat: 51.5719, Lon: 4.7683}, // Breda
			},
		},
	}
}

// AllPoints returns all corridor waypoints from all targets.
func (c PrewarmConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// Leg is a directed corridor segment between two consecutive waypoints.
type Leg struct {
	Corridor string
	From     Point
	To       Point
}

// AllLegs returns every consecutive waypoint pair from all targets.
func (c PrewarmConfig) AllLegs() []Leg {
	var legs []Leg
	for _, target := range c.Targets {
		for i := 1; i < len(target.Points); i++ {
			legs = append(legs, Leg{
				Corridor: target.Name,
				From:     target.Points[i-1],
				To:       target.Points[i],
			})
		}
	}
	return legs
}

// TotalPoints returns the total number of corridor waypoints.
func (c PrewarmConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
