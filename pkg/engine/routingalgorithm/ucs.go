// Package routingalgorithm plans multi-destination visits over the road
// graph with repeated uniform-cost search.
package routingalgorithm

import (
	"tourin/pkg/datastructure"
	"tourin/pkg/util"
)

// https://en.wikipedia.org/wiki/Dijkstra%27s_algorithm#Practical_optimizations_and_infinite_graphs

type RouteAlgorithm struct {
	g datastructure.GraphView

	// finalize observes every non-stale pop with its settled cost; only
	// tests set it.
	finalize func(nodeID int32, cost float64)
}

func NewRouteAlgorithm(g datastructure.GraphView) *RouteAlgorithm {
	return &RouteAlgorithm{g: g}
}

type cameFromPair struct {
	EdgeID int32
	NodeID int32
}

// SearchLeg is one uniform-cost search result: the nearest target and the
// cheapest path from the leg's source to it.
type SearchLeg struct {
	Target   int32
	Path     []int32
	EdgePath []int32
	Dist     float64
}

// SearchNearestTarget expands a best-first frontier from `from` in strictly
// increasing accumulated cost until the first node popped belongs to
// targets. Edge weights are non-negative lengths, so that first popped
// target is reached via a globally cheapest path regardless of tie order.
//
// Stale queue entries (rank above the node's best known cost) are skipped
// instead of decreased in place; see the MinHeap note on lazy deletion. The
// false return means the reachable component is exhausted without touching
// any target.
func (rt *RouteAlgorithm) SearchNearestTarget(from int32, targets map[int32]struct{}) (SearchLeg, bool) {
	pq := datastructure.NewMinHeap[int32]()
	pq.Insert(datastructure.NewPriorityQueueNode(0, from))

	costSoFar := make(map[int32]float64)
	costSoFar[from] = 0.0

	cameFrom := make(map[int32]cameFromPair)
	cameFrom[from] = cameFromPair{EdgeID: -1, NodeID: -1}

	for pq.Size() > 0 {
		current, _ := pq.ExtractMin()
		nodeID := current.Item

		if current.Rank > costSoFar[nodeID] {
			// stale entry, a cheaper path to nodeID was already finalized
			continue
		}

		if rt.finalize != nil {
			rt.finalize(nodeID, current.Rank)
		}

		if _, isTarget := targets[nodeID]; isTarget {
			path, edgePath := rt.reconstructPath(cameFrom, nodeID)
			return SearchLeg{
				Target:   nodeID,
				Path:     path,
				EdgePath: edgePath,
				Dist:     costSoFar[nodeID],
			}, true
		}

		for _, edgeID := range rt.g.GetNodeEdges(nodeID) {
			edge := rt.g.GetEdge(edgeID)
			toNodeID := edge.OtherNodeID(nodeID)

			newCost := costSoFar[nodeID] + edge.Dist
			best, seen := costSoFar[toNodeID]
			if !seen || newCost < best {
				costSoFar[toNodeID] = newCost
				cameFrom[toNodeID] = cameFromPair{EdgeID: edgeID, NodeID: nodeID}
				pq.Insert(datastructure.NewPriorityQueueNode(newCost, toNodeID))
			}
		}
	}

	return SearchLeg{}, false
}

func (rt *RouteAlgorithm) reconstructPath(cameFrom map[int32]cameFromPair, target int32) ([]int32, []int32) {
	path := []int32{target}
	edgePath := []int32{}

	current := cameFrom[target]
	for current.NodeID != -1 {
		path = append(path, current.NodeID)
		edgePath = append(edgePath, current.EdgeID)
		current = cameFrom[current.NodeID]
	}

	return util.ReverseG(path), util.ReverseG(edgePath)
}
