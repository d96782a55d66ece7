package routing

import (
	"fmt"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Router assigns Points to the edges of a positioned graph.
type Router interface {
	// Route overwrites the Points of every edge; edges it cannot route are
	// left empty and listed in the Result.
	Route(g *graph.Graph) *Result
}

// Result lists the edges a router could not route.
type Result struct {
	Routed     int
	Unroutable []*graph.Edge
}

// Names accepted by [New].
const (
	NameGrid  = "grid"
	NameElbow = "elbow"
)

// Options configures the grid router.
type Options struct {
	// Margin is the clearance kept around every node.
	Margin float64
	// Padding extends the grid beyond the outermost obstacles.
	Padding float64
	// MaxExpansions bounds each single search.
	MaxExpansions int
	// MaxCells bounds the grid area. Graphs whose grid would be larger get
	// no routes.
	MaxCells int
}

// DefaultOptions returns the standard grid router settings.
func DefaultOptions() Options {
	return Options{Margin: 20, Padding: 50, MaxExpansions: 2_000_000, MaxCells: MaxGridCells}
}

// New returns the router registered under name.
func New(name string, opts Options) (Router, error) {
	switch name {
	case "", NameGrid:
		return &Grid{Options: opts}, nil
	case NameElbow:
		return Elbow{}, nil
	}
	return nil, fmt.Errorf("unknown router %q", name)
}
