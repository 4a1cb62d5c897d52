package snap

import (
	"log"

	"tourin/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

const (
	// padding around each edge bounding box, in degrees (~25m), so queries
	// right next to a thin vertical/horizontal road still hit its rectangle
	edgeBBPadding = 0.00025

	// how many candidate rectangles a nearest query pulls before exact
	// point-to-polyline distances decide
	nearbyEdgeCount = 12
)

type edgeSpatial struct {
	edgeID int32
	bound  rtreego.Rect
}

func (e *edgeSpatial) Bounds() rtreego.Rect {
	return e.bound
}

// RtreeIndex is the in-memory candidate provider: an R-tree over the
// bounding boxes of every canonical edge geometry.
type RtreeIndex struct {
	tree *rtreego.Rtree
}

// BuildRtreeIndex bulk-inserts every canonical edge. Synthetic overlay edges
// never enter the index; the snapper resolves them through the overlay's
// replacement table instead.
func BuildRtreeIndex(g *datastructure.Graph) *RtreeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, edge := range g.Edges() {
		tree.Insert(newEdgeSpatial(edge))
		if (edge.EdgeID+1)%100000 == 0 {
			log.Printf("insert road segment %d to r-tree...", edge.EdgeID+1)
		}
	}
	return &RtreeIndex{tree: tree}
}

func newEdgeSpatial(edge datastructure.Edge) *edgeSpatial {
	minLon, minLat := edge.Geometry[0].Lon, edge.Geometry[0].Lat
	maxLon, maxLat := minLon, minLat
	for _, c := range edge.Geometry[1:] {
		minLon = min(minLon, c.Lon)
		maxLon = max(maxLon, c.Lon)
		minLat = min(minLat, c.Lat)
		maxLat = max(maxLat, c.Lat)
	}

	point := rtreego.Point{minLon - edgeBBPadding, minLat - edgeBBPadding}
	lengths := []float64{
		(maxLon - minLon) + 2*edgeBBPadding,
		(maxLat - minLat) + 2*edgeBBPadding,
	}
	bound, _ := rtreego.NewRect(point, lengths)

	return &edgeSpatial{edgeID: edge.EdgeID, bound: bound}
}

// NearbyEdges returns the canonical ids of the edges whose rectangles are
// nearest to the query point, farthest-first distance order not guaranteed.
func (idx *RtreeIndex) NearbyEdges(lat, lon float64) ([]int32, error) {
	neighbors := idx.tree.NearestNeighbors(nearbyEdgeCount, rtreego.Point{lon, lat})

	edgeIDs := make([]int32, 0, len(neighbors))
	for _, n := range neighbors {
		if n == nil {
			continue
		}
		edgeIDs = append(edgeIDs, n.(*edgeSpatial).edgeID)
	}
	return edgeIDs, nil
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
