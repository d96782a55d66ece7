// Package layout runs the layout engine: layer assignment, crossing
// minimization, coordinate assignment and edge routing, in that order, on a
// single [graph.Graph].
//
// # Usage
//
//	report, err := layout.Run(ctx, g, layout.DefaultOptions())
//	if err != nil {
//	    // data-integrity failure or cancellation: g is unusable
//	}
//	if !report.OK() {
//	    // some lanes or edges degraded; g is still fully positioned
//	}
//
// # Failure Policy
//
// [Run] returns an error only when the graph references a missing node or
// the context is cancelled between stages. Every other failure is recorded
// per item in the [Report] and the pipeline continues: a lane whose edges
// form a cycle falls back to longest-path layering, and an edge no candidate
// path reaches keeps an empty waypoint list.
//
// # Sub-packages
//
//   - [github.com/matzehuels/swimlane/pkg/layout/layering]: per-lane integer program
//   - [github.com/matzehuels/swimlane/pkg/layout/ordering]: alignment and barycenter strategies
//   - [github.com/matzehuels/swimlane/pkg/layout/position]: pixel coordinates and bounding boxes
//   - [github.com/matzehuels/swimlane/pkg/layout/routing]: obstacle-aware grid routing
//
// # Concurrency
//
// Stages mutate the graph in place and run sequentially. Callers must not
// run layouts against the same graph from several goroutines.
package layout
