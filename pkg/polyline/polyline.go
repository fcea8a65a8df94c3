// Package polyline implements the Google encoded-polyline format used by the
// Directions API (precision 5). See
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import "math"

const precisionFactor = 1e5

// Point is a decoded polyline vertex.
type Point struct {
	Lat float64
	Lon float64
}

// Decode converts an encoded polyline string into its vertices.
// Returns nil for an empty input.
func Decode(encoded string) []Point {
	if encoded == "" {
		return nil
	}

	points := make([]Point, 0, len(encoded)/4)
	var lat, lon int
	i := 0

	for i < len(encoded) {
		dLat, next := decodeDelta(encoded, i)
		i = next
		lat += dLat

		dLon, next := decodeDelta(encoded, i)
		i = next
		lon += dLon

		points = append(points, Point{
			Lat: float64(lat) / precisionFactor,
			Lon: float64(lon) / precisionFactor,
		})
	}

	return points
}

// Encode converts vertices into an encoded polyline string.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*4)
	var prevLat, prevLon int

	for _, p := range points {
		lat := int(math.Round(p.Lat * precisionFactor))
		lon := int(math.Round(p.Lon * precisionFactor))

		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(buf)
}

// LengthKm returns the total haversine length of the polyline in kilometers.
func LengthKm(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += haversineKm(points[i-1], points[i])
	}
	return total
}

// decodeDelta reads one zigzag-encoded delta starting at index i.
// Returns the delta and the index of the next unread byte.
func decodeDelta(encoded string, i int) (int, int) {
	var result, shift int

	for i < len(encoded) {
		chunk := int(encoded[i]) - 63
		i++
		result |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}

// appendDelta writes one zigzag-encoded delta in 5-bit chunks.
func appendDelta(buf []byte, v int) []byte {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v <<= 1
	}

	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}

const earthRadiusKm = 6371.0

func haversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
