package geo

import (
	"math"

	"tourin/pkg/datastructure"

	"github.com/golang/geo/s2"
)

// ProjectPointToLineCoord projects snap onto the great-circle segment between
// linePointA and linePointB and returns the closest point on that segment.
func ProjectPointToLineCoord(linePointA, linePointB, snap datastructure.Coordinate) datastructure.Coordinate {
	aS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(linePointA.Lat, linePointA.Lon))
	bS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(linePointB.Lat, linePointB.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, aS2, bS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// NearestPointOnPolyline projects p onto every segment of the polyline and
// keeps the overall closest projection. It returns the projected point, the
// index of the segment it lies on (projection is between points[segmentIdx]
// and points[segmentIdx+1]) and the distance from p to it in meters.
//
// All parallel edges of a node pair pass through here independently; the
// caller compares their distances and picks the minimum, so no road segment
// is silently ignored.
func NearestPointOnPolyline(points []datastructure.Coordinate, p datastructure.Coordinate) (datastructure.Coordinate, int, float64) {
	best := datastructure.Coordinate{}
	bestIdx := 0
	bestDist := math.MaxFloat64

	for i := 0; i < len(points)-1; i++ {
		projection := ProjectPointToLineCoord(points[i], points[i+1], p)
		dist := CalculateHaversineDistance(p.Lat, p.Lon, projection.Lat, projection.Lon)
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
			best = projection
		}
	}
	return best, bestIdx, bestDist
}

const duplicateVertexEpsilon = 1e-9 // degrees

// SplitPolyline cuts the polyline at a projected point lying on segment
// segmentIdx and returns the two halves. Both halves contain the cut point,
// so first ends where second begins.
func SplitPolyline(points []datastructure.Coordinate, segmentIdx int, cut datastructure.Coordinate) ([]datastructure.Coordinate, []datastructure.Coordinate) {
	first := make([]datastructure.Coordinate, 0, segmentIdx+2)
	first = append(first, points[:segmentIdx+1]...)
	if !sameVertex(first[len(first)-1], cut) {
		first = append(first, cut)
	}

	second := make([]datastructure.Coordinate, 0, len(points)-segmentIdx)
	second = append(second, cut)
	rest := points[segmentIdx+1:]
	if len(rest) > 0 && sameVertex(rest[0], cut) {
		rest = rest[1:]
	}
	second = append(second, rest...)

	return first, second
}

func sameVertex(a, b datastructure.Coordinate) bool {
	return math.Abs(a.Lat-b.Lat) < duplicateVertexEpsilon && math.Abs(a.Lon-b.Lon) < duplicateVertexEpsilon
}
