package graph_test

import (
	"fmt"

	"github.com/matzehuels/swimlane/pkg/graph"
)

func ExampleGraph() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: 1, Kind: graph.KindStart, Pool: "Shop", Lane: "Sales"})
	_ = g.AddNode(graph.Node{ID: 2, Kind: graph.KindTask, Label: "Take order", Pool: "Shop", Lane: "Sales"})
	_ = g.AddNode(graph.Node{ID: 3, Kind: graph.KindTask, Label: "Pick", Pool: "Shop", Lane: "Warehouse"})
	_ = g.AddEdge(graph.Edge{From: 1, To: 2})
	_ = g.AddEdge(graph.Edge{From: 2, To: 3})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Lanes:", len(g.Lanes()))
	fmt.Println("Sales edges:", len(g.LaneEdges(g.Pool("Shop").Lane("Sales"))))
	// Output:
	// Nodes: 3
	// Lanes: 2
	// Sales edges: 1
}

func ExampleKind_Size() {
	for _, k := range []graph.Kind{graph.KindStart, graph.KindGatewayExclusive, graph.KindTask, graph.KindSubprocess} {
		s := k.Size()
		fmt.Printf("%s: %vx%v\n", k, s.W, s.H)
	}
	// Output:
	// start: 36x36
	// gateway_exclusive: 50x50
	// task: 100x80
	// subprocess: 350x200
}
