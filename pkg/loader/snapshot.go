package loader

import (
	"fmt"
	"log"
	"os"

	"tourin/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// graph snapshot: the already-normalized graph marshaled with kelindar/binary
// and zstd-compressed. Loading it skips JSON decoding and the directed-edge
// merge on every restart.

type snapshotGraph struct {
	Nodes []datastructure.Node
	Edges []datastructure.Edge
}

func SaveSnapshot(g *datastructure.Graph, path string) error {
	snap := snapshotGraph{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
	encoded, err := binary.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode graph snapshot: %w", err)
	}

	var compressed []byte
	compressed, err = zstd.Compress(compressed, encoded)
	if err != nil {
		return fmt.Errorf("compress graph snapshot: %w", err)
	}

	if err := os.WriteFile(path, compressed, 0644); err != nil {
		return fmt.Errorf("write graph snapshot %s: %w", path, err)
	}
	log.Printf("saved graph snapshot to %s (%d bytes)", path, len(compressed))
	return nil
}

func LoadSnapshot(path string) (*datastructure.Graph, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &GraphNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read graph snapshot %s: %w", path, err)
	}

	var buf []byte
	buf, err = zstd.Decompress(buf, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress graph snapshot %s: %w", path, err)
	}

	var snap snapshotGraph
	if err := binary.Unmarshal(buf, &snap); err != nil {
		return nil, fmt.Errorf("decode graph snapshot %s: %w", path, err)
	}

	g := datastructure.NewGraph(snap.Nodes, snap.Edges)
	log.Printf("loaded graph snapshot from %s: %d nodes / %d edges", path, g.NumNodes(), g.NumEdges())
	return g, nil
}
