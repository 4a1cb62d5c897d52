package routingalgorithm

import (
	"errors"
	"fmt"
)

// ErrNoTargets means the route request carried no destination at all.
var ErrNoTargets = errors.New("at least one destination is required")

// NoRouteError means the search exhausted the component reachable from
// FromNodeID while destinations were still pending (disconnected graph).
type NoRouteError struct {
	FromNodeID int32
	Remaining  []int32
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route from node %d to destination node %d (%d destination(s) unreachable)",
		e.FromNodeID, e.Remaining[0], len(e.Remaining))
}

// RoutePlan is a full visiting order: one continuous node path from the
// start through every destination, with the per-leg breakdown kept for
// diagnostics and the total traversal cost in meters.
type RoutePlan struct {
	Path       []int32
	VisitOrder []int32
	TotalDistM float64
	Legs       []SearchLeg
}

// OrderingStrategy decides the order destinations are visited in. The search
// primitive stays the same across strategies; only the ordering policy is
// swappable.
type OrderingStrategy interface {
	Name() string
	PlanVisit(start int32, targets []int32) (RoutePlan, error)
}

// GreedyNearestFirst visits the closest still-pending destination at each
// step and never revisits that choice. This is a deterministic, tractable
// heuristic, not an optimal solver for the underlying Hamiltonian-path
// problem: the total route can be longer than the best possible ordering,
// but cost stays linear in the number of destinations (one search per leg).
type GreedyNearestFirst struct {
	rt *RouteAlgorithm
}

func NewGreedyNearestFirst(rt *RouteAlgorithm) *GreedyNearestFirst {
	return &GreedyNearestFirst{rt: rt}
}

func (g *GreedyNearestFirst) Name() string {
	return "greedy-nearest-first"
}

func (g *GreedyNearestFirst) PlanVisit(start int32, targets []int32) (RoutePlan, error) {
	if len(targets) == 0 {
		return RoutePlan{}, ErrNoTargets
	}

	pending := make(map[int32]struct{}, len(targets))
	for _, t := range targets {
		if t == start {
			// already there, nothing to route
			continue
		}
		pending[t] = struct{}{}
	}

	plan := RoutePlan{Path: []int32{start}}
	current := start

	for len(pending) > 0 {
		leg, found := g.rt.SearchNearestTarget(current, pending)
		if !found {
			return RoutePlan{}, &NoRouteError{FromNodeID: current, Remaining: remainingTargets(targets, pending)}
		}

		// skip the leg's first node, it duplicates the seam with the
		// accumulated path
		plan.Path = append(plan.Path, leg.Path[1:]...)
		plan.VisitOrder = append(plan.VisitOrder, leg.Target)
		plan.TotalDistM += leg.Dist
		plan.Legs = append(plan.Legs, leg)

		delete(pending, leg.Target)
		current = leg.Target
	}

	return plan, nil
}

// remainingTargets reports the unreached targets in request order.
func remainingTargets(targets []int32, pending map[int32]struct{}) []int32 {
	remaining := make([]int32, 0, len(pending))
	for _, t := range targets {
		if _, ok := pending[t]; ok {
			remaining = append(remaining, t)
			delete(pending, t)
		}
	}
	return remaining
}
