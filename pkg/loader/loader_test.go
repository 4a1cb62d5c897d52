package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const directedGraphJSON = `{
  "directed": true,
  "multigraph": true,
  "nodes": [
    {"id": 101, "lon": 0.0, "lat": 0.0},
    {"id": 102, "lon": 0.001, "lat": 0.0},
    {"id": 103, "lon": 0.002, "lat": 0.0}
  ],
  "edges": [
    {"source": 101, "target": 102, "length_m": 111.19, "coordinates": [[0.0, 0.0], [0.001, 0.0]], "name": "main street", "highway": "residential"},
    {"source": 102, "target": 101, "length_m": 111.19, "coordinates": [[0.001, 0.0], [0.0, 0.0]], "name": "main street", "highway": "residential"},
    {"source": 102, "target": 103, "length_m": 111.19, "coordinates": [[0.001, 0.0], [0.002, 0.0]]},
    {"source": 101, "target": 102, "length_m": 250.0, "coordinates": [[0.0, 0.0], [0.0005, 0.001], [0.001, 0.0]]}
  ]
}`

func writeGraphFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph_roads.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGraphMergesDirectedPairs(t *testing.T) {
	g, err := LoadGraph(writeGraphFile(t, directedGraphJSON))
	assert.Nil(t, err)

	assert.Equal(t, 3, g.NumNodes())
	// the two directions of main street collapse into one undirected edge,
	// the longer detour stays as a distinct parallel edge
	assert.Equal(t, 3, g.NumEdges())

	edgesBetweenFirstPair := 0
	for _, edgeID := range g.GetNodeEdges(0) {
		edge := g.GetEdge(edgeID)
		if edge.OtherNodeID(0) == 1 {
			edgesBetweenFirstPair++
		}
	}
	assert.Equal(t, 2, edgesBetweenFirstPair)
}

func TestLoadGraphGeometryOrientedAndPinned(t *testing.T) {
	g, err := LoadGraph(writeGraphFile(t, directedGraphJSON))
	assert.Nil(t, err)

	for _, edge := range g.Edges() {
		from := g.GetNode(edge.FromNodeID)
		to := g.GetNode(edge.ToNodeID)
		assert.Equal(t, from.Lat, edge.Geometry[0].Lat)
		assert.Equal(t, from.Lon, edge.Geometry[0].Lon)
		assert.Equal(t, to.Lat, edge.Geometry[len(edge.Geometry)-1].Lat)
		assert.Equal(t, to.Lon, edge.Geometry[len(edge.Geometry)-1].Lon)
	}
}

func TestLoadGraphWeightsNonNegative(t *testing.T) {
	g, err := LoadGraph(writeGraphFile(t, directedGraphJSON))
	assert.Nil(t, err)

	for _, edge := range g.Edges() {
		assert.GreaterOrEqual(t, edge.Dist, 0.0)
	}
	assert.InDelta(t, 111.19, g.GetEdge(0).Dist, 1e-9)
}

func TestLoadGraphMissingFile(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "nope.json"))

	var notFound *GraphNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSnapshotRoundTrip(t *testing.T) {
	g, err := LoadGraph(writeGraphFile(t, directedGraphJSON))
	assert.Nil(t, err)

	path := filepath.Join(t.TempDir(), "graph.snapshot")
	assert.Nil(t, SaveSnapshot(g, path))

	loaded, err := LoadSnapshot(path)
	assert.Nil(t, err)
	assert.Equal(t, g.NumNodes(), loaded.NumNodes())
	assert.Equal(t, g.NumEdges(), loaded.NumEdges())
	assert.Equal(t, g.GetEdge(2).Geometry, loaded.GetEdge(2).Geometry)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.snapshot"))

	var notFound *GraphNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
