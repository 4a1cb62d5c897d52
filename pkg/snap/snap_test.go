package snap

import (
	"errors"
	"testing"

	"tourin/pkg/datastructure"
	"tourin/pkg/geo"

	"github.com/stretchr/testify/assert"
)

// two straight segments along the equator, roughly 100m each:
// A(0,0) -- B(0, 0.0009) -- C(0, 0.0018)
func buildEquatorGraph() *datastructure.Graph {
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 0, 0),
		datastructure.NewNode(1, 0, 0.0009),
		datastructure.NewNode(2, 0, 0.0018),
	}
	edges := []datastructure.Edge{
		{
			FromNodeID: 0, ToNodeID: 1,
			Geometry: []datastructure.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.0009}},
		},
		{
			FromNodeID: 1, ToNodeID: 2,
			Geometry: []datastructure.Coordinate{{Lat: 0, Lon: 0.0009}, {Lat: 0, Lon: 0.0018}},
		},
	}
	for i := range edges {
		edges[i].Dist = geo.PolylineLength(edges[i].Geometry)
	}
	return datastructure.NewGraph(nodes, edges)
}

func TestSnapToEdgeInteriorSplitsEdge(t *testing.T) {
	g := buildEquatorGraph()
	snapper := NewRoadSnapper(BuildRtreeIndex(g))
	overlay := datastructure.NewGraphOverlay(g)

	// ~5m north of the first edge's midpoint: much closer to the edge
	// interior than to either endpoint
	query := datastructure.NewCoordinate(0.000045, 0.00045)
	results, err := snapper.SnapCoords(overlay, []datastructure.Coordinate{query}, DefaultMaxSnapDistanceM)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(results))

	result := results[0]
	assert.True(t, result.Synthetic)
	assert.Equal(t, int32(3), result.NodeID) // first id past the canonical range
	assert.InDelta(t, 5.0, result.DistM, 0.5)
	assert.InDelta(t, 0.00045, result.Snapped.Lon, 1e-7)
	assert.InDelta(t, 0.0, result.Snapped.Lat, 1e-7)

	// the split edge is masked and replaced by two live halves
	halves, split := overlay.Replacement(0)
	assert.True(t, split)

	original := g.GetEdge(0)
	firstHalf := overlay.GetEdge(halves[0])
	secondHalf := overlay.GetEdge(halves[1])
	assert.Equal(t, original.FromNodeID, firstHalf.FromNodeID)
	assert.Equal(t, result.NodeID, firstHalf.ToNodeID)
	assert.Equal(t, result.NodeID, secondHalf.FromNodeID)
	assert.Equal(t, original.ToNodeID, secondHalf.ToNodeID)

	// halves lengths are recomputed from geometry and sum to the whole
	assert.InDelta(t, original.Dist, firstHalf.Dist+secondHalf.Dist, original.Dist*1e-6)

	// the canonical graph is untouched
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())
}

func TestSnapAtNodePrefersExistingNode(t *testing.T) {
	g := buildEquatorGraph()
	snapper := NewRoadSnapper(BuildRtreeIndex(g))
	overlay := datastructure.NewGraphOverlay(g)

	// exactly on node B: equidistant node vs projection, the node wins and
	// no synthetic node is created
	query := datastructure.NewCoordinate(0, 0.0009)
	results, err := snapper.SnapCoords(overlay, []datastructure.Coordinate{query}, DefaultMaxSnapDistanceM)
	assert.Nil(t, err)

	result := results[0]
	assert.False(t, result.Synthetic)
	assert.Equal(t, int32(1), result.NodeID)
	assert.InDelta(t, 0.0, result.DistM, 1e-6)

	_, split := overlay.Replacement(0)
	assert.False(t, split)
	_, split = overlay.Replacement(1)
	assert.False(t, split)
}

func TestSnapNearEndpointPrefersNode(t *testing.T) {
	g := buildEquatorGraph()
	snapper := NewRoadSnapper(BuildRtreeIndex(g))
	overlay := datastructure.NewGraphOverlay(g)

	// ~3m west of node A: the projection clamps onto A itself, so the snap
	// resolves to the node
	query := datastructure.NewCoordinate(0, -0.000027)
	results, err := snapper.SnapCoords(overlay, []datastructure.Coordinate{query}, DefaultMaxSnapDistanceM)
	assert.Nil(t, err)

	result := results[0]
	assert.False(t, result.Synthetic)
	assert.Equal(t, int32(0), result.NodeID)
	assert.InDelta(t, 3.0, result.DistM, 0.5)
}

func TestSnapTooFarFromRoad(t *testing.T) {
	g := buildEquatorGraph()
	snapper := NewRoadSnapper(BuildRtreeIndex(g))
	overlay := datastructure.NewGraphOverlay(g)

	// ~111m north of the network with a 50m limit
	query := datastructure.NewCoordinate(0.001, 0.0009)
	_, err := snapper.SnapCoords(overlay, []datastructure.Coordinate{query}, 50)

	var unroutable *UnroutablePointError
	assert.True(t, errors.As(err, &unroutable))
	assert.Equal(t, query, unroutable.Coord)
	assert.Equal(t, 50.0, unroutable.MaxDistM)
	assert.Greater(t, unroutable.DistM, unroutable.MaxDistM)

	// the failed snap must not leave a half-applied split behind
	_, split := overlay.Replacement(0)
	assert.False(t, split)
}

func TestSnapSamePointTwiceReusesSyntheticNode(t *testing.T) {
	g := buildEquatorGraph()
	snapper := NewRoadSnapper(BuildRtreeIndex(g))
	overlay := datastructure.NewGraphOverlay(g)

	query := datastructure.NewCoordinate(0.000045, 0.00045)
	first, err := snapper.SnapCoords(overlay, []datastructure.Coordinate{query}, DefaultMaxSnapDistanceM)
	assert.Nil(t, err)
	assert.True(t, first[0].Synthetic)

	// the second snap resolves the masked edge to its live halves and finds
	// the first split's node; the reported distance is still the query's
	// perpendicular offset from the road, same as the first snap
	second, err := snapper.SnapCoords(overlay, []datastructure.Coordinate{query}, DefaultMaxSnapDistanceM)
	assert.Nil(t, err)
	assert.Equal(t, first[0].NodeID, second[0].NodeID)
	assert.False(t, second[0].Synthetic)
	assert.InDelta(t, first[0].DistM, second[0].DistM, 1e-6)
	assert.InDelta(t, 5.0, second[0].DistM, 0.5)
}

func TestSnapTwoPointsOnSameEdge(t *testing.T) {
	g := buildEquatorGraph()
	snapper := NewRoadSnapper(BuildRtreeIndex(g))
	overlay := datastructure.NewGraphOverlay(g)

	// both points project onto the first edge's interior at different spots,
	// so the second split lands on one of the first split's halves
	queries := []datastructure.Coordinate{
		datastructure.NewCoordinate(0.000045, 0.0003),
		datastructure.NewCoordinate(0.000045, 0.0006),
	}
	results, err := snapper.SnapCoords(overlay, queries, DefaultMaxSnapDistanceM)
	assert.Nil(t, err)
	assert.True(t, results[0].Synthetic)
	assert.True(t, results[1].Synthetic)
	assert.NotEqual(t, results[0].NodeID, results[1].NodeID)

	// total length across the live pieces still equals the original edge
	total := 0.0
	for _, edgeID := range overlay.GetNodeEdges(results[0].NodeID) {
		total += overlay.GetEdge(edgeID).Dist
	}
	for _, edgeID := range overlay.GetNodeEdges(results[1].NodeID) {
		edge := overlay.GetEdge(edgeID)
		if edge.FromNodeID != results[0].NodeID && edge.ToNodeID != results[0].NodeID {
			total += edge.Dist
		}
	}
	assert.InDelta(t, g.GetEdge(0).Dist, total, g.GetEdge(0).Dist*1e-6)
}
