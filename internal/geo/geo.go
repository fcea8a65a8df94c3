// Package geo provides great-circle geometry on WGS84 coordinates.
// All functions are pure; validation of coordinate ranges happens upstream.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

// Coordinate represents a geographic point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is within valid ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// DistanceKm returns the haversine distance between two coordinates in kilometers.
// Symmetric, and zero only when a == b.
func DistanceKm(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDegrees returns the initial compass bearing in [0, 360) from one
// coordinate toward another.
func BearingDegrees(from, to Coordinate) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	dLon := radians(to.Lon - from.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	bearing := degrees(math.Atan2(y, x))
	return math.Mod(bearing+360, 360)
}

// DestinationPoint returns the coordinate reached by travelling distanceKm
// along the given bearing from the origin.
func DestinationPoint(from Coordinate, distanceKm, bearingDeg float64) Coordinate {
	lat1 := radians(from.Lat)
	lon1 := radians(from.Lon)
	brng := radians(bearingDeg)
	angular := distanceKm / EarthRadiusKm

	lat2 := math.Asin(
		math.Sin(lat1)*math.Cos(angular) +
			math.Cos(lat1)*math.Sin(angular)*math.Cos(brng))

	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2))

	return Coordinate{Lat: degrees(lat2), Lon: degrees(lon2)}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
