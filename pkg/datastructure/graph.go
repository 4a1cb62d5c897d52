package datastructure

type Coordinate struct {
	Lat float64
	Lon float64
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

type Node struct {
	ID  int32
	Lat float64
	Lon float64
}

func NewNode(id int32, lat, lon float64) Node {
	return Node{ID: id, Lat: lat, Lon: lon}
}

// Edge is one undirected road segment of the multigraph. Geometry is stored
// once, in canonical orientation FromNodeID -> ToNodeID; a consumer walking
// the edge from ToNodeID has to read the geometry reversed, the stored slice
// is never flipped in place. Geometry first/last vertices coincide with the
// endpoint node positions. Dist is the physical length of the geometry in
// meters and doubles as the routing weight.
type Edge struct {
	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32
	Dist       float64
	Geometry   []Coordinate
	StreetName string
	RoadClass  string
}

// OtherNodeID returns the endpoint opposite to nodeID.
func (e Edge) OtherNodeID(nodeID int32) int32 {
	if e.FromNodeID == nodeID {
		return e.ToNodeID
	}
	return e.FromNodeID
}

// GraphView is the read surface shared by the canonical graph and the
// request-scoped overlay. Router, snapper and stitcher only ever see this
// interface, so they work the same on both.
type GraphView interface {
	GetNode(nodeID int32) Node
	GetEdge(edgeID int32) Edge
	GetNodeEdges(nodeID int32) []int32
	NumNodes() int
	NumEdges() int
}

// Graph is the canonical road network: an undirected multigraph with dense
// int32 node ids. Built once by the loader and never mutated afterwards;
// every structural change a request needs happens in a GraphOverlay on top.
type Graph struct {
	nodes     []Node
	edges     []Edge
	nodeEdges [][]int32
}

func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:     nodes,
		edges:     edges,
		nodeEdges: make([][]int32, len(nodes)),
	}
	for i := range g.edges {
		e := &g.edges[i]
		e.EdgeID = int32(i)
		g.nodeEdges[e.FromNodeID] = append(g.nodeEdges[e.FromNodeID], e.EdgeID)
		if e.ToNodeID != e.FromNodeID {
			g.nodeEdges[e.ToNodeID] = append(g.nodeEdges[e.ToNodeID], e.EdgeID)
		}
	}
	return g
}

func (g *Graph) GetNode(nodeID int32) Node {
	return g.nodes[nodeID]
}

func (g *Graph) GetEdge(edgeID int32) Edge {
	return g.edges[edgeID]
}

// GetNodeEdges returns the ids of every edge incident to nodeID. Parallel
// edges between the same node pair keep distinct ids.
func (g *Graph) GetNodeEdges(nodeID int32) []int32 {
	return g.nodeEdges[nodeID]
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Nodes exposes the node slice for index building. Callers must not mutate.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Edges exposes the edge slice for index building. Callers must not mutate.
func (g *Graph) Edges() []Edge {
	return g.edges
}
