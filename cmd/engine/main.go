package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"tourin/pkg/datastructure"
	"tourin/pkg/kv"
	"tourin/pkg/loader"
	"tourin/pkg/server/rest"
	"tourin/pkg/server/rest/service"
	"tourin/pkg/snap"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listenAddr   = flag.String("listenaddr", ":5000", "server listen address")
	graphFile    = flag.String("f", "assets/graph_roads.json", "preprocessed road network graph (node-link json)")
	snapshotFile = flag.String("snapshot", "", "binary graph snapshot path; loaded when present, written after a json load")
	maxSnapDist  = flag.Float64("maxsnapdist", snap.DefaultMaxSnapDistanceM, "default maximum snapping distance in meters")
	useKV        = flag.Bool("kv", false, "snap candidates from the badger h3 index instead of the in-memory r-tree")
	kvPath       = flag.String("kvpath", "./tourin_db", "badger database directory for the h3 edge index")
)

func main() {
	flag.Parse()

	graph, err := loadRoadGraph()
	if err != nil {
		log.Fatal(err)
	}

	var provider snap.CandidateProvider
	var kvDB *kv.KVDB
	if *useKV {
		db, err := badger.Open(badger.DefaultOptions(*kvPath))
		if err != nil {
			log.Fatal(err)
		}
		kvDB = kv.NewKVDB(db)
		defer kvDB.Close()

		if err := kvDB.BuildH3IndexedEdges(context.Background(), graph); err != nil {
			log.Fatal(err)
		}
		provider = kvDB
	} else {
		provider = snap.BuildRtreeIndex(graph)
	}

	snapper := snap.NewRoadSnapper(provider)
	planSvc := service.NewTourPlanService(graph, snapper, *maxSnapDist)

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(rest.PromeHttpMiddleware(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.TourPlanRouter(r, planSvc)

	fmt.Printf("\ntour routing engine ready!!")
	fmt.Printf("\nserver started at %s\n", *listenAddr)

	log.Fatal(http.ListenAndServe(*listenAddr, r))
}

// loadRoadGraph prefers the binary snapshot when one exists; a json load
// writes the snapshot back so the next restart skips the normalization.
func loadRoadGraph() (*datastructure.Graph, error) {
	if *snapshotFile != "" {
		if _, err := os.Stat(*snapshotFile); err == nil {
			return loader.LoadSnapshot(*snapshotFile)
		}
	}

	graph, err := loader.LoadGraph(*graphFile)
	if err != nil {
		return nil, err
	}

	if *snapshotFile != "" {
		if err := loader.SaveSnapshot(graph, *snapshotFile); err != nil {
			log.Printf("could not save graph snapshot: %v", err)
		}
	}
	return graph, nil
}
