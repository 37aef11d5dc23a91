package geospatial

import "math"

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	h := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox returns the box enclosing a circle of radiusMeters around a point.
// Near the poles the longitude span is widened to the full range.
func BoundingBox(lat, lng, radiusMeters float64) (minLat, minLng, maxLat, maxLng float64) {
	dLat := radiusMeters / metersPerDegree

	cos := math.Cos(radians(lat))
	if cos < 1e-9 {
		return lat - dLat, -180, lat + dLat, 180
	}
	dLng := radiusMeters / (metersPerDegree * cos)

	return lat - dLat, lng - dLng, lat + dLat, lng + dLng
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
