// Package stitch expands a node-id path into the continuous real-world
// route geometry, using each traversed edge's stored polyline.
package stitch

import (
	"fmt"
	"math"

	"tourin/pkg/datastructure"
	"tourin/pkg/util"
)

// DisconnectedPathError means two consecutive path nodes share no edge.
// The router never produces such a pair, so this is an internal-consistency
// failure to log as a bug, not a user-facing routing condition.
type DisconnectedPathError struct {
	FromNodeID int32
	ToNodeID   int32
}

func (e *DisconnectedPathError) Error() string {
	return fmt.Sprintf("internal: path nodes %d and %d share no edge", e.FromNodeID, e.ToNodeID)
}

// StitchPath returns the route geometry for the node path: one continuous
// (lat, lon) sequence with no duplicate points at edge seams. An empty path
// yields an empty sequence.
func StitchPath(g datastructure.GraphView, path []int32) ([]datastructure.Coordinate, error) {
	if len(path) == 0 {
		return []datastructure.Coordinate{}, nil
	}

	first := g.GetNode(path[0])
	stitched := []datastructure.Coordinate{datastructure.NewCoordinate(first.Lat, first.Lon)}

	for i := 0; i < len(path)-1; i++ {
		u, v := path[i], path[i+1]
		segment, err := edgeGeometryCoords(g, u, v)
		if err != nil {
			return nil, err
		}
		// segment[0] duplicates the running last point
		stitched = append(stitched, segment[1:]...)
	}

	return stitched, nil
}

// edgeGeometryCoords returns the geometry between adjacent nodes, oriented
// u -> v. Among parallel edges the shortest one represents the pair, same
// as the router's cheapest-path preference. Stored geometry runs in the
// edge's canonical direction; traversal from the far endpoint reads a
// reversed copy, the stored slice is never flipped.
func edgeGeometryCoords(g datastructure.GraphView, u, v int32) ([]datastructure.Coordinate, error) {
	edge, found := edgeBetween(g, u, v)
	if !found {
		return nil, &DisconnectedPathError{FromNodeID: u, ToNodeID: v}
	}

	coords := edge.Geometry
	if edge.FromNodeID != u {
		coords = util.ReverseG(coords)
	}
	return coords, nil
}

func edgeBetween(g datastructure.GraphView, u, v int32) (datastructure.Edge, bool) {
	best := datastructure.Edge{Dist: math.Inf(1)}
	found := false

	for _, edgeID := range g.GetNodeEdges(u) {
		edge := g.GetEdge(edgeID)
		if edge.OtherNodeID(u) != v {
			continue
		}
		if !found || edge.Dist < best.Dist {
			best = edge
			found = true
		}
	}
	return best, found
}
