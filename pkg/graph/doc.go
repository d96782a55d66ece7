// Package graph provides the process graph model shared by every layout stage.
//
// # Overview
//
// A process diagram is a set of typed nodes (events, tasks, gateways, data
// objects, subprocesses) connected by directed sequence-flow edges. Nodes are
// partitioned into pools (independent participants) and lanes (sub-partitions
// of a pool). The [Graph] is the single mutable root handed to every layout
// stage: layer assignment writes [Node.Layer], crossing minimization writes
// [Node.Slot] and [Node.Order], coordinate assignment writes node positions and
// lane/pool bounding boxes, and edge routing writes [Edge.Points].
//
// # Basic Usage
//
//	g := graph.New()
//	_ = g.AddNode(graph.Node{ID: 1, Kind: graph.KindStart, Pool: "Shop", Lane: "Sales"})
//	_ = g.AddNode(graph.Node{ID: 2, Kind: graph.KindTask, Label: "Take order", Pool: "Shop", Lane: "Sales"})
//	_ = g.AddEdge(graph.Edge{From: 1, To: 2})
//
// Pools and lanes are created lazily, in the order their first node appears.
// Use [Graph.Validate] before layout to catch dangling edge endpoints.
//
// # Element Sizes
//
// The rendered size of a node is fixed by its [Kind]; see [Kind.Size]. Events
// are 36×36, gateways 50×50, tasks 100×80 and expanded subprocesses 350×200.
//
// # Documents
//
// [Document] is the on-disk and on-the-wire form of a graph, including any
// layout state already computed. [ReadFile] and [WriteFile] select JSON or YAML
// from the file extension.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Layout stages mutate the
// graph in place and must run sequentially.
package graph
