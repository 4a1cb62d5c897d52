// Package kv persists an H3-indexed view of the road network's edges in
// badger, keyed by res-9 cell. It backs the snapper as an alternative
// candidate provider to the in-memory R-tree: nearby edges come from the
// query point's cell, expanding ring by ring while cells come up empty.
package kv

import (
	"context"
	"fmt"
	"log"
	"sort"

	"tourin/pkg/datastructure"
	"tourin/pkg/geo"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

const (
	cellResolution = 9
	maxGridRings   = 10
	writeBatchSize = 1000
)

// KVEdge is the compact per-cell record: the candidate edge id plus the
// anchor position used to order candidates nearest-first.
type KVEdge struct {
	EdgeID    int32
	CenterLoc [2]float64 // [lat, lon] of the edge geometry's first vertex
}

type KVDB struct {
	db *badger.DB
}

func NewKVDB(db *badger.DB) *KVDB {
	return &KVDB{db}
}

// BuildH3IndexedEdges groups every canonical edge under the H3 cell of its
// geometry's first vertex and writes the groups to badger in batches.
func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, g *datastructure.Graph) error {
	log.Printf("creating & saving h3 indexed road segments to key-value db...")

	kv := make(map[string][]KVEdge)
	for _, edge := range g.Edges() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		edgeLat := edge.Geometry[0].Lat
		edgeLon := edge.Geometry[0].Lon

		cell := h3.LatLngToCell(h3.NewLatLng(edgeLat, edgeLon), cellResolution)
		kv[cell.String()] = append(kv[cell.String()], KVEdge{
			EdgeID:    edge.EdgeID,
			CenterLoc: [2]float64{edgeLat, edgeLon},
		})
	}

	batches := make([]batchData, 0, writeBatchSize)
	for key, value := range kv {
		batches = append(batches, batchData{key: key, value: value})
		if len(batches) == writeBatchSize {
			if err := k.saveBatchEdges(ctx, batches); err != nil {
				return err
			}
			batches = make([]batchData, 0, writeBatchSize)
		}
	}
	if len(batches) > 0 {
		if err := k.saveBatchEdges(ctx, batches); err != nil {
			return err
		}
	}

	log.Printf("creating & saving h3 indexed road segments to key-value db done...")
	return nil
}

type batchData struct {
	key   string
	value []KVEdge
}

func (k *KVDB) saveBatchEdges(ctx context.Context, batchData []batchData) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, data := range batchData {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		val, err := encodeEdges(data.value)
		if err != nil {
			return err
		}

		if err := batch.Set([]byte(data.key), val); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		log.Printf("error saving edges: %v", err)
		return err
	}
	return nil
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return val, err
}

// NearbyEdges implements the snapper's CandidateProvider, candidates ordered
// nearest-anchor-first. An empty result after full ring expansion means the
// point is nowhere near a road; the snapper turns that into its own
// unroutable-point failure.
func (k *KVDB) NearbyEdges(lat, lon float64) ([]int32, error) {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), cellResolution)

	edges, err := k.cellEdges(origin)
	if err != nil {
		return nil, err
	}

	for level := 1; level <= maxGridRings && len(edges) == 0; level++ {
		for _, cell := range h3.GridDisk(origin, level) {
			if cell == origin {
				continue
			}
			ringEdges, err := k.cellEdges(cell)
			if err != nil {
				return nil, err
			}
			edges = append(edges, ringEdges...)
		}
	}

	sortEdgesByAnchorDistance(edges, lat, lon)

	edgeIDs := make([]int32, 0, len(edges))
	for _, e := range edges {
		edgeIDs = append(edgeIDs, e.EdgeID)
	}
	return edgeIDs, nil
}

// sortEdgesByAnchorDistance orders candidates by how close their anchor
// vertex sits to the query point, so the most plausible edges come first.
func sortEdgesByAnchorDistance(edges []KVEdge, lat, lon float64) {
	sort.Slice(edges, func(i, j int) bool {
		di := geo.CalculateHaversineDistance(lat, lon, edges[i].CenterLoc[0], edges[i].CenterLoc[1])
		dj := geo.CalculateHaversineDistance(lat, lon, edges[j].CenterLoc[0], edges[j].CenterLoc[1])
		return di < dj
	})
}

func (k *KVDB) cellEdges(cell h3.Cell) ([]KVEdge, error) {
	val, err := k.get([]byte(cell.String()))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	return loadEdges(val)
}

func (k *KVDB) Close() {
	k.db.Close()
}
