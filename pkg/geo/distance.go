package geo

import (
	"math"

	"tourin/pkg/datastructure"
)

const (
	earthRadiusM = 6371007.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// CalculateHaversineDistance returns the great-circle distance between two
// lat/lon points in meters.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusM * c
}

// PolylineLength sums the haversine length of every segment, in meters.
// Edge lengths are always recomputed from geometry with this, never copied
// around, so a split edge's halves add back up to the original.
func PolylineLength(points []datastructure.Coordinate) float64 {
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += CalculateHaversineDistance(points[i].Lat, points[i].Lon, points[i+1].Lat, points[i+1].Lon)
	}
	return total
}
