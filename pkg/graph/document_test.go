package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func sampleGraph() *Graph {
	g := New()
	_ = g.AddNode(Node{ID: 1, Kind: KindStart, Pool: "Shop", Lane: "Sales", Layer: 0})
	_ = g.AddNode(Node{ID: 2, Kind: KindTask, Label: "Pack", Pool: "Shop", Lane: "Sales", Layer: 1, X: 200, Y: 80, YOffset: 0})
	_ = g.AddNode(Node{ID: 3, Kind: KindEnd, Pool: "Shop", Lane: "Sales", Layer: NoLayer})
	_ = g.AddEdge(Edge{From: 1, To: 2, Label: "go", Points: []Point{{86, 98}, {200, 98}}})
	_ = g.AddEdge(Edge{From: 2, To: 3})
	g.Pools[0].W, g.Pools[0].H = 500, 200
	return g
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Marshal(sampleGraph(), f)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			g, err := Read(bytes.NewReader(data), f)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if g.NodeCount() != 3 || len(g.Edges) != 2 {
				t.Fatalf("got %d nodes, %d edges", g.NodeCount(), len(g.Edges))
			}
			n2, _ := g.Node(2)
			if n2.Layer != 1 || n2.X != 200 || n2.Label != "Pack" {
				t.Errorf("node 2 = %+v", n2)
			}
			n3, _ := g.Node(3)
			if n3.Layer != NoLayer {
				t.Errorf("node 3 layer = %d, want NoLayer", n3.Layer)
			}
			n1, _ := g.Node(1)
			if n1.Layer != 0 {
				t.Errorf("node 1 layer = %d, want 0", n1.Layer)
			}
			if pts := g.Edges[0].Points; len(pts) != 2 || pts[1] != (Point{200, 98}) {
				t.Errorf("edge points = %v", pts)
			}
			if g.Pools[0].W != 500 {
				t.Errorf("pool width = %v, want 500", g.Pools[0].W)
			}
			if g.LastNodeID != 3 {
				t.Errorf("LastNodeID = %d, want 3", g.LastNodeID)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.yml")
	if err := WriteFile(sampleGraph(), path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	g, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}

	if _, err := ReadFile(filepath.Join(dir, "g.txt")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ReadFile(.txt) error = %v, want %v", err, ErrUnknownFormat)
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("ReadFile(missing) should fail")
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate node", `{"nodes":[{"id":1},{"id":1}],"edges":[]}`, ErrDuplicateNodeID},
		{"dangling edge", `{"nodes":[{"id":1}],"edges":[{"from":1,"to":2}]}`, ErrUnknownTargetNode},
		{"bad id", `{"nodes":[{"id":0}],"edges":[]}`, ErrInvalidNodeID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), FormatJSON)
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Read(strings.NewReader("{"), FormatJSON); err == nil {
		t.Error("Read() should fail on malformed JSON")
	}
}

func TestFromDocument_PoolOrder(t *testing.T) {
	doc := Document{
		Pools: []PoolDoc{{Name: "B", Lanes: []LaneDoc{{Name: "x"}}}, {Name: "A"}},
		Nodes: []NodeDoc{{ID: 1, Pool: "A", Lane: "y"}, {ID: 2, Pool: "B", Lane: "x"}},
	}
	g, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if g.Pools[0].Name != "B" || g.Pools[1].Name != "A" {
		t.Errorf("pool order = [%s %s], want [B A]", g.Pools[0].Name, g.Pools[1].Name)
	}
}
