// Package snap maps arbitrary geographic coordinates onto routable graph
// nodes, inserting synthetic nodes into the request overlay when a query
// point is closer to the interior of an edge than to any existing node.
package snap

import (
	"fmt"
	"math"

	"tourin/pkg/datastructure"
	"tourin/pkg/geo"
)

// DefaultMaxSnapDistanceM is the default maximum snapping distance.
const DefaultMaxSnapDistanceM = 100.0

// CandidateProvider supplies canonical edge ids near a query point. Backed
// by the in-memory R-tree or by the H3/badger index.
type CandidateProvider interface {
	NearbyEdges(lat, lon float64) ([]int32, error)
}

// UnroutablePointError means a query coordinate is farther from every road
// than the configured maximum snap distance. The caller should surface it as
// "location too far from any road", never snap to an arbitrarily far node.
type UnroutablePointError struct {
	Coord    datastructure.Coordinate
	DistM    float64
	MaxDistM float64
}

func (e *UnroutablePointError) Error() string {
	return fmt.Sprintf("coordinate (%f, %f) is too far from the road network: %.1fm > %.1fm",
		e.Coord.Lon, e.Coord.Lat, e.DistM, e.MaxDistM)
}

// SnapResult describes how one query coordinate was snapped.
type SnapResult struct {
	Original  datastructure.Coordinate
	NodeID    int32
	Snapped   datastructure.Coordinate
	DistM     float64
	Synthetic bool
}

type RoadSnapper struct {
	provider CandidateProvider
}

func NewRoadSnapper(provider CandidateProvider) *RoadSnapper {
	return &RoadSnapper{provider: provider}
}

// SnapCoords snaps every query coordinate onto the overlay's graph, in input
// order. Edge splits land in the overlay only; snapping the same point twice
// against one overlay returns the same node id, because the first split's
// synthetic node is the second lookup's nearest node (at the same
// perpendicular offset the first snap reported).
func (rs *RoadSnapper) SnapCoords(overlay *datastructure.GraphOverlay,
	coords []datastructure.Coordinate, maxDistM float64) ([]SnapResult, error) {

	results := make([]SnapResult, 0, len(coords))
	for _, c := range coords {
		result, err := rs.snapCoord(overlay, c, maxDistM)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (rs *RoadSnapper) snapCoord(overlay *datastructure.GraphOverlay,
	c datastructure.Coordinate, maxDistM float64) (SnapResult, error) {

	candidateIDs, err := rs.provider.NearbyEdges(c.Lat, c.Lon)
	if err != nil {
		return SnapResult{}, fmt.Errorf("nearby edge lookup for (%f, %f): %w", c.Lon, c.Lat, err)
	}
	liveIDs := resolveLiveEdges(overlay, candidateIDs)

	var (
		bestNodeID   int32 = -1
		bestNodeDist       = math.Inf(1)

		bestEdgeID   int32 = -1
		bestEdgeDist       = math.Inf(1)
		bestProj     datastructure.Coordinate
		bestSegment  int
	)

	for _, edgeID := range liveIDs {
		edge := overlay.GetEdge(edgeID)

		for _, nodeID := range []int32{edge.FromNodeID, edge.ToNodeID} {
			node := overlay.GetNode(nodeID)
			dist := geo.CalculateHaversineDistance(c.Lat, c.Lon, node.Lat, node.Lon)
			if dist < bestNodeDist {
				bestNodeDist = dist
				bestNodeID = nodeID
			}
		}

		proj, segmentIdx, dist := geo.NearestPointOnPolyline(edge.Geometry, c)
		if dist < bestEdgeDist {
			bestEdgeDist = dist
			bestEdgeID = edgeID
			bestProj = proj
			bestSegment = segmentIdx
		}
	}

	nearest := math.Min(bestNodeDist, bestEdgeDist)
	if nearest > maxDistM {
		return SnapResult{}, &UnroutablePointError{Coord: c, DistM: nearest, MaxDistM: maxDistM}
	}

	// ties prefer the existing node: no reason to mutate the overlay when an
	// equally close node already exists
	if bestNodeDist <= bestEdgeDist {
		node := overlay.GetNode(bestNodeID)
		return SnapResult{
			Original: c,
			NodeID:   bestNodeID,
			Snapped:  datastructure.NewCoordinate(node.Lat, node.Lon),
			DistM:    bestNodeDist,
		}, nil
	}

	nodeID, snapped, synthetic := rs.insertSyntheticNode(overlay, bestEdgeID, bestProj, bestSegment)
	return SnapResult{
		Original:  c,
		NodeID:    nodeID,
		Snapped:   snapped,
		DistM:     bestEdgeDist,
		Synthetic: synthetic,
	}, nil
}

// insertSyntheticNode splits the edge at the projected point: the original
// edge is masked in the overlay and two new edges take its place, lengths
// recomputed from their geometry so the halves sum back to the whole.
func (rs *RoadSnapper) insertSyntheticNode(overlay *datastructure.GraphOverlay,
	edgeID int32, proj datastructure.Coordinate, segmentIdx int) (int32, datastructure.Coordinate, bool) {

	edge := overlay.GetEdge(edgeID)
	first, second := geo.SplitPolyline(edge.Geometry, segmentIdx, proj)

	if len(first) < 2 || len(second) < 2 {
		// projection degenerated onto an endpoint: use the closer one
		from := overlay.GetNode(edge.FromNodeID)
		to := overlay.GetNode(edge.ToNodeID)
		distFrom := geo.CalculateHaversineDistance(proj.Lat, proj.Lon, from.Lat, from.Lon)
		distTo := geo.CalculateHaversineDistance(proj.Lat, proj.Lon, to.Lat, to.Lon)
		if distFrom <= distTo {
			return edge.FromNodeID, datastructure.NewCoordinate(from.Lat, from.Lon), false
		}
		return edge.ToNodeID, datastructure.NewCoordinate(to.Lat, to.Lon), false
	}

	newNodeID := overlay.AddSyntheticNode(proj.Lat, proj.Lon)
	firstID := overlay.AddSyntheticEdge(edge.FromNodeID, newNodeID, geo.PolylineLength(first), first)
	secondID := overlay.AddSyntheticEdge(newNodeID, edge.ToNodeID, geo.PolylineLength(second), second)
	overlay.MaskEdge(edgeID, firstID, secondID)

	return newNodeID, proj, true
}

// resolveLiveEdges chases candidate edge ids through the overlay's
// replacement table: an edge already split in this request resolves to its
// two live halves (recursively, a half may itself have been split).
func resolveLiveEdges(overlay *datastructure.GraphOverlay, candidateIDs []int32) []int32 {
	live := make([]int32, 0, len(candidateIDs))
	stack := append([]int32(nil), candidateIDs...)
	seen := make(map[int32]struct{}, len(candidateIDs))

	for len(stack) > 0 {
		edgeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := seen[edgeID]; dup {
			continue
		}
		seen[edgeID] = struct{}{}

		if halves, split := overlay.Replacement(edgeID); split {
			stack = append(stack, halves[0], halves[1])
			continue
		}
		live = append(live, edgeID)
	}
	return live
}
