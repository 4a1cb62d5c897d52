package datastructure

// GraphOverlay shadows an immutable canonical Graph with request-local
// additions and removals. Snapping may split edges and insert synthetic
// nodes; those land here and die with the request, so concurrent requests
// sharing the canonical graph never see each other's synthetic state.
//
// Synthetic node/edge ids continue the canonical id ranges, so ids stay
// unique across one overlay and GraphView consumers need no special casing.
type GraphOverlay struct {
	base *Graph

	nodes     map[int32]Node
	edges     map[int32]Edge
	nodeEdges map[int32][]int32
	removed   map[int32]struct{}
	// replaced maps a masked canonical edge id to the two overlay edges that
	// took its place after a split.
	replaced map[int32][2]int32

	nextNodeID int32
	nextEdgeID int32
}

func NewGraphOverlay(base *Graph) *GraphOverlay {
	return &GraphOverlay{
		base:       base,
		nodes:      make(map[int32]Node),
		edges:      make(map[int32]Edge),
		nodeEdges:  make(map[int32][]int32),
		removed:    make(map[int32]struct{}),
		replaced:   make(map[int32][2]int32),
		nextNodeID: int32(base.NumNodes()),
		nextEdgeID: int32(base.NumEdges()),
	}
}

func (o *GraphOverlay) GetNode(nodeID int32) Node {
	if int(nodeID) < o.base.NumNodes() {
		return o.base.GetNode(nodeID)
	}
	return o.nodes[nodeID]
}

func (o *GraphOverlay) GetEdge(edgeID int32) Edge {
	if int(edgeID) < o.base.NumEdges() {
		return o.base.GetEdge(edgeID)
	}
	return o.edges[edgeID]
}

func (o *GraphOverlay) GetNodeEdges(nodeID int32) []int32 {
	var edges []int32
	if int(nodeID) < o.base.NumNodes() {
		for _, edgeID := range o.base.GetNodeEdges(nodeID) {
			if _, masked := o.removed[edgeID]; masked {
				continue
			}
			edges = append(edges, edgeID)
		}
	}
	return append(edges, o.nodeEdges[nodeID]...)
}

func (o *GraphOverlay) NumNodes() int {
	return o.base.NumNodes() + len(o.nodes)
}

func (o *GraphOverlay) NumEdges() int {
	return o.base.NumEdges() + len(o.edges)
}

// AddSyntheticNode inserts a request-local node at (lat, lon).
func (o *GraphOverlay) AddSyntheticNode(lat, lon float64) int32 {
	id := o.nextNodeID
	o.nextNodeID++
	o.nodes[id] = NewNode(id, lat, lon)
	return id
}

// AddSyntheticEdge inserts a request-local undirected edge. Geometry must run
// from fromNodeID to toNodeID and touch both node positions exactly.
func (o *GraphOverlay) AddSyntheticEdge(fromNodeID, toNodeID int32, dist float64, geometry []Coordinate) int32 {
	id := o.nextEdgeID
	o.nextEdgeID++
	o.edges[id] = Edge{
		EdgeID:     id,
		FromNodeID: fromNodeID,
		ToNodeID:   toNodeID,
		Dist:       dist,
		Geometry:   geometry,
	}
	o.nodeEdges[fromNodeID] = append(o.nodeEdges[fromNodeID], id)
	if toNodeID != fromNodeID {
		o.nodeEdges[toNodeID] = append(o.nodeEdges[toNodeID], id)
	}
	return id
}

// MaskEdge hides edgeID from this overlay's adjacency and records the two
// edges that replace it. Canonical storage stays untouched.
func (o *GraphOverlay) MaskEdge(edgeID, firstHalf, secondHalf int32) {
	if int(edgeID) >= o.base.NumEdges() {
		// re-splitting an overlay edge: drop it from the overlay adjacency
		e := o.edges[edgeID]
		o.nodeEdges[e.FromNodeID] = removeEdgeID(o.nodeEdges[e.FromNodeID], edgeID)
		o.nodeEdges[e.ToNodeID] = removeEdgeID(o.nodeEdges[e.ToNodeID], edgeID)
	}
	o.removed[edgeID] = struct{}{}
	o.replaced[edgeID] = [2]int32{firstHalf, secondHalf}
}

// Replacement reports whether edgeID was split in this overlay, and by what.
func (o *GraphOverlay) Replacement(edgeID int32) ([2]int32, bool) {
	halves, ok := o.replaced[edgeID]
	return halves, ok
}

func removeEdgeID(edges []int32, edgeID int32) []int32 {
	for i, id := range edges {
		if id == edgeID {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
