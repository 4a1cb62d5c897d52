package service

import (
	"context"
	"errors"
	"log"

	"tourin/pkg/datastructure"
	"tourin/pkg/engine/routingalgorithm"
	"tourin/pkg/server"
	"tourin/pkg/snap"
	"tourin/pkg/stitch"
)

type Snapper interface {
	SnapCoords(overlay *datastructure.GraphOverlay, coords []datastructure.Coordinate,
		maxDistM float64) ([]snap.SnapResult, error)
}

// RouteResult is one planned tour: the stitched route geometry plus its
// encoded polyline, total length and the order destinations get visited in.
type RouteResult struct {
	Route      []datastructure.Coordinate
	Polyline   string
	DistanceM  float64
	NodePath   []int32
	VisitOrder []int32
	Snaps      []snap.SnapResult
	Strategy   string
}

// TourPlanService runs the snap -> route -> stitch pipeline. Every request
// gets a fresh overlay over the shared canonical graph, so synthetic nodes
// from one request never leak into another and the canonical graph stays
// unmodified for the process lifetime.
type TourPlanService struct {
	graph        *datastructure.Graph
	snapper      Snapper
	maxSnapDistM float64
}

func NewTourPlanService(graph *datastructure.Graph, snapper Snapper, maxSnapDistM float64) *TourPlanService {
	if maxSnapDistM <= 0 {
		maxSnapDistM = snap.DefaultMaxSnapDistanceM
	}
	return &TourPlanService{
		graph:        graph,
		snapper:      snapper,
		maxSnapDistM: maxSnapDistM,
	}
}

// PlanRoute plans a tour starting at start and visiting every destination.
// maxSnapDistM <= 0 falls back to the service default. The pipeline
// short-circuits on the first failing stage.
func (s *TourPlanService) PlanRoute(ctx context.Context, start datastructure.Coordinate,
	destinations []datastructure.Coordinate, maxSnapDistM float64) (RouteResult, error) {

	if len(destinations) == 0 {
		return RouteResult{}, server.NewErrorf(server.ErrBadParamInput, "at least one destination is required")
	}
	if maxSnapDistM <= 0 {
		maxSnapDistM = s.maxSnapDistM
	}

	overlay := datastructure.NewGraphOverlay(s.graph)

	queries := append([]datastructure.Coordinate{start}, destinations...)
	snaps, err := s.snapper.SnapCoords(overlay, queries, maxSnapDistM)
	if err != nil {
		var unroutable *snap.UnroutablePointError
		if errors.As(err, &unroutable) {
			return RouteResult{}, server.WrapErrorf(err, server.ErrNotFound, "no route found for the given inputs")
		}
		return RouteResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	startNode := snaps[0].NodeID
	targets := dedupTargets(snaps[1:], startNode)

	rt := routingalgorithm.NewRouteAlgorithm(overlay)
	strategy := routingalgorithm.NewGreedyNearestFirst(rt)

	plan, err := strategy.PlanVisit(startNode, targets)
	if err != nil {
		var noRoute *routingalgorithm.NoRouteError
		if errors.As(err, &noRoute) {
			return RouteResult{}, server.WrapErrorf(err, server.ErrNotFound, "no route found for the given inputs")
		}
		if errors.Is(err, routingalgorithm.ErrNoTargets) {
			// every destination snapped onto the start node itself
			node := overlay.GetNode(startNode)
			pos := datastructure.NewCoordinate(node.Lat, node.Lon)
			return RouteResult{
				Route:    []datastructure.Coordinate{pos},
				Polyline: datastructure.CreatePolyline([]datastructure.Coordinate{pos}),
				NodePath: []int32{startNode},
				Snaps:    snaps,
				Strategy: strategy.Name(),
			}, nil
		}
		return RouteResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	route, err := stitch.StitchPath(overlay, plan.Path)
	if err != nil {
		// router/stitcher invariant broke, this is a bug and not a normal
		// routing failure
		log.Printf("route stitching failed on a router-produced path: %v", err)
		return RouteResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	return RouteResult{
		Route:      route,
		Polyline:   datastructure.CreatePolyline(route),
		DistanceM:  plan.TotalDistM,
		NodePath:   plan.Path,
		VisitOrder: plan.VisitOrder,
		Snaps:      snaps,
		Strategy:   strategy.Name(),
	}, nil
}

// dedupTargets collapses destinations that snapped onto the same node and
// drops ones that landed on the start node, preserving request order.
func dedupTargets(snaps []snap.SnapResult, startNode int32) []int32 {
	seen := map[int32]struct{}{startNode: {}}
	targets := make([]int32, 0, len(snaps))
	for _, sr := range snaps {
		if _, dup := seen[sr.NodeID]; dup {
			continue
		}
		seen[sr.NodeID] = struct{}{}
		targets = append(targets, sr.NodeID)
	}
	return targets
}
