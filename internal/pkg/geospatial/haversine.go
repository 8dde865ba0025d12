package geospatial

import "math"

const earthRadiusKm = 6371.0

// HaversineMeters calculates the great-circle distance in meters between two
// points. Used as the straight-line ordering for nearby-store queries; driving
// distance comes from the distance provider.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000
}

// BoundingBox returns a bounding box around a point with the given radius in
// meters, suitable as a cheap SQL prefilter before exact distance checks.
func BoundingBox(lat, lng, radiusMeters float64) (minLat, minLng, maxLat, maxLng float64) {
	latDelta := radiusMeters / 111320.0
	lngDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lng - lngDelta, lat + latDelta, lng + lngDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
