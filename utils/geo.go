package utils

import "math"

// earthRadiusKm is the mean radius used for great-circle distances.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// BoundingBoxDeltas returns the latitude/longitude degree deltas covering a
// radius around the given latitude. One degree of latitude spans roughly
// 111 km; longitude shrinks with cos(lat).
func BoundingBoxDeltas(latitude, radiusKm float64) (latDelta, lngDelta float64) {
	latDelta = radiusKm / 111.0
	lngDelta = radiusKm / (111.0 * math.Cos(latitude*math.Pi/180))
	return latDelta, lngDelta
}
