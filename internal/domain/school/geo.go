package school

import "math"

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in kilometres
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := toRadians(lat2 - lat1)
	dlon := toRadians(lon2 - lon1)
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// RoundKM rounds a distance to two decimals
func RoundKM(d float64) float64 {
	return math.Round(d*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
