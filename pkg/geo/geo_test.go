package geo

import (
	"testing"

	"tourin/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

// 1e-5 degree of latitude is ~1.11m on the WGS84 sphere

func TestCalculateHaversineDistance(t *testing.T) {
	// one degree of latitude along a meridian
	dist := CalculateHaversineDistance(0, 0, 1, 0)
	assert.InDelta(t, 111195, dist, 100)

	assert.Equal(t, 0.0, CalculateHaversineDistance(7.5, 110.2, 7.5, 110.2))
}

func TestPolylineLengthMatchesSegmentSum(t *testing.T) {
	line := []datastructure.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0.001, Lon: 0.001},
	}
	segA := CalculateHaversineDistance(0, 0, 0, 0.001)
	segB := CalculateHaversineDistance(0, 0.001, 0.001, 0.001)
	assert.InDelta(t, segA+segB, PolylineLength(line), 1e-9)
}

func TestProjectPointToLineCoordPerpendicular(t *testing.T) {
	a := datastructure.NewCoordinate(0, 0)
	b := datastructure.NewCoordinate(0, 0.001)
	// directly above the midpoint of the segment
	p := datastructure.NewCoordinate(0.0001, 0.0005)

	proj := ProjectPointToLineCoord(a, b, p)
	assert.InDelta(t, 0.0, proj.Lat, 1e-7)
	assert.InDelta(t, 0.0005, proj.Lon, 1e-7)
}

func TestProjectPointToLineCoordClampsToEndpoint(t *testing.T) {
	a := datastructure.NewCoordinate(0, 0)
	b := datastructure.NewCoordinate(0, 0.001)
	// beyond b, projection must clamp onto the segment
	p := datastructure.NewCoordinate(0, 0.002)

	proj := ProjectPointToLineCoord(a, b, p)
	assert.InDelta(t, b.Lon, proj.Lon, 1e-7)
}

func TestNearestPointOnPolylinePicksRightSegment(t *testing.T) {
	line := []datastructure.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0.001, Lon: 0.001},
	}
	// alongside the second (vertical) segment
	p := datastructure.NewCoordinate(0.0005, 0.0012)

	proj, segmentIdx, dist := NearestPointOnPolyline(line, p)
	assert.Equal(t, 1, segmentIdx)
	assert.InDelta(t, 0.0005, proj.Lat, 1e-6)
	assert.InDelta(t, 0.001, proj.Lon, 1e-6)
	assert.InDelta(t, CalculateHaversineDistance(0.0005, 0.0012, proj.Lat, proj.Lon), dist, 1e-9)
}

func TestSplitPolylineHalvesShareCutPoint(t *testing.T) {
	line := []datastructure.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0, Lon: 0.002},
	}
	cut := datastructure.NewCoordinate(0, 0.0015)

	first, second := SplitPolyline(line, 1, cut)
	assert.Equal(t, []datastructure.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}, {Lat: 0, Lon: 0.0015}}, first)
	assert.Equal(t, []datastructure.Coordinate{{Lat: 0, Lon: 0.0015}, {Lat: 0, Lon: 0.002}}, second)

	// the halves sum back to the whole, that is what edge splitting relies on
	total := PolylineLength(line)
	assert.InDelta(t, total, PolylineLength(first)+PolylineLength(second), total*1e-6)
}

func TestSplitPolylineCutOnVertex(t *testing.T) {
	line := []datastructure.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0, Lon: 0.002},
	}
	cut := datastructure.NewCoordinate(0, 0.001)

	first, second := SplitPolyline(line, 0, cut)
	assert.Equal(t, []datastructure.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}}, first)
	assert.Equal(t, []datastructure.Coordinate{{Lat: 0, Lon: 0.001}, {Lat: 0, Lon: 0.002}}, second)
}
