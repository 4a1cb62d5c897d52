// Package loader builds the canonical road graph from the preprocessed
// node-link JSON written by the external graph-build tooling.
package loader

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"tourin/pkg/datastructure"
	"tourin/pkg/geo"
	"tourin/pkg/util"
)

// GraphNotFoundError means the preprocessed network file is absent. The
// caller should trigger the external fetch/build step; retrying the load
// won't help.
type GraphNotFoundError struct {
	Path string
}

func (e *GraphNotFoundError) Error() string {
	return fmt.Sprintf("road network graph not found at %s (run the graph build tooling first)", e.Path)
}

// node-link JSON schema (networkx json_graph.node_link_data with
// edges="edges"). Node ids may be numbers or strings in the source file.
type nodeLinkGraph struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Nodes      []nodeLinkNode `json:"nodes"`
	Edges      []nodeLinkEdge `json:"edges"`
}

type nodeLinkNode struct {
	ID  json.RawMessage `json:"id"`
	Lat float64         `json:"lat"`
	Lon float64         `json:"lon"`
}

type nodeLinkEdge struct {
	Source      json.RawMessage `json:"source"`
	Target      json.RawMessage `json:"target"`
	Weight      float64         `json:"weight"`
	LengthM     float64         `json:"length_m"`
	Coordinates [][]float64     `json:"coordinates"` // [lon, lat] pairs
	Name        string          `json:"name"`
	Highway     string          `json:"highway"`
}

// LoadGraph reads the node-link JSON file at path and returns the canonical
// undirected multigraph. A directed source is normalized: the two directions
// of one physical road collapse into a single undirected edge, a
// one-direction-only edge is still treated as bidirectional. Parallel edges
// between the same node pair stay distinct.
func LoadGraph(path string) (*datastructure.Graph, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &GraphNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read graph file %s: %w", path, err)
	}

	var raw nodeLinkGraph
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decode graph file %s: %w", path, err)
	}

	nodes := make([]datastructure.Node, 0, len(raw.Nodes))
	idMap := make(map[string]int32, len(raw.Nodes))
	for _, n := range raw.Nodes {
		id := int32(len(nodes))
		idMap[string(n.ID)] = id
		nodes = append(nodes, datastructure.NewNode(id, n.Lat, n.Lon))
	}

	edges := make([]datastructure.Edge, 0, len(raw.Edges))
	seen := make(map[string]struct{}, len(raw.Edges))
	for _, e := range raw.Edges {
		u, ok := idMap[string(e.Source)]
		if !ok {
			return nil, fmt.Errorf("edge references unknown source node %s", e.Source)
		}
		v, ok := idMap[string(e.Target)]
		if !ok {
			return nil, fmt.Errorf("edge references unknown target node %s", e.Target)
		}

		geometry := edgeGeometry(e, nodes[u], nodes[v])
		dist := e.LengthM
		if dist == 0 {
			dist = e.Weight
		}
		if dist == 0 {
			dist = geo.PolylineLength(geometry)
		}

		if raw.Directed {
			// the opposite direction of the same physical road maps to the
			// same key, so it merges into one undirected edge
			key := mergeKey(u, v, dist)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}

		edges = append(edges, datastructure.Edge{
			FromNodeID: u,
			ToNodeID:   v,
			Dist:       dist,
			Geometry:   geometry,
			StreetName: e.Name,
			RoadClass:  e.Highway,
		})
	}

	g := datastructure.NewGraph(nodes, edges)
	log.Printf("loaded road graph from %s: %d nodes / %d edges", path, g.NumNodes(), g.NumEdges())
	return g, nil
}

// edgeGeometry returns the edge polyline oriented u -> v with its endpoints
// pinned to the exact node positions. A geometry-less edge degrades to the
// straight line between its endpoints.
func edgeGeometry(e nodeLinkEdge, u, v datastructure.Node) []datastructure.Coordinate {
	start := datastructure.NewCoordinate(u.Lat, u.Lon)
	end := datastructure.NewCoordinate(v.Lat, v.Lon)

	if len(e.Coordinates) < 2 {
		return []datastructure.Coordinate{start, end}
	}

	coords := make([]datastructure.Coordinate, 0, len(e.Coordinates))
	for _, c := range e.Coordinates {
		coords = append(coords, datastructure.NewCoordinate(c[1], c[0]))
	}

	// the source may store the polyline in either direction
	if squaredDegreeDistance(coords[0], start) > squaredDegreeDistance(coords[len(coords)-1], start) {
		coords = util.ReverseG(coords)
	}
	coords[0] = start
	coords[len(coords)-1] = end
	return coords
}

func squaredDegreeDistance(a, b datastructure.Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}

func mergeKey(u, v int32, dist float64) string {
	if u > v {
		u, v = v, u
	}
	return fmt.Sprintf("%d|%d|%.6f", u, v, util.RoundFloat(dist, 6))
}
