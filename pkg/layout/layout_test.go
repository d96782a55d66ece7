package layout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/observability"
)

func build(t *testing.T, kinds map[int]graph.Kind, edges [][2]int) *graph.Graph {
	t.Helper()
	g := graph.New()
	for id := 1; id <= len(kinds); id++ {
		if err := g.AddNode(graph.Node{ID: id, Kind: kinds[id], Pool: "P", Lane: "L"}); err != nil {
			t.Fatalf("AddNode(%d) error = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(graph.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v) error = %v", e, err)
		}
	}
	return g
}

func node(t *testing.T, g *graph.Graph, id int) *graph.Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %d missing", id)
	}
	return n
}

func TestRun_Chain(t *testing.T) {
	g := build(t, map[int]graph.Kind{
		1: graph.KindStart,
		2: graph.KindTask,
		3: graph.KindEnd,
	}, [][2]int{{1, 2}, {2, 3}})

	rep, err := Run(context.Background(), g, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !rep.OK() {
		t.Fatalf("Run() diagnostics = %v", rep.Diagnostics)
	}
	for id, want := range map[int]int{1: 0, 2: 1, 3: 2} {
		if got := node(t, g, id).Layer; got != want {
			t.Errorf("layer(%d) = %d, want %d", id, got, want)
		}
	}
	if rep.Routed != 2 {
		t.Errorf("Routed = %d, want 2", rep.Routed)
	}
	for _, e := range g.Edges {
		if len(e.Points) < 2 {
			t.Errorf("edge %s has %d points, want at least 2", e, len(e.Points))
		}
	}
	if rep.Objective != 2 {
		t.Errorf("Objective = %d, want 2", rep.Objective)
	}
	if len(rep.Timings) != 5 {
		t.Errorf("Timings = %d stages, want 5", len(rep.Timings))
	}
}

func TestRun_Branching(t *testing.T) {
	const (
		a = iota + 1
		gw
		b
		c
		join
		d
	)
	g := build(t, map[int]graph.Kind{
		a:    graph.KindStart,
		gw:   graph.KindGatewayExclusive,
		b:    graph.KindTask,
		c:    graph.KindTask,
		join: graph.KindGatewayJoin,
		d:    graph.KindEnd,
	}, [][2]int{{a, gw}, {gw, b}, {gw, c}, {b, join}, {c, join}, {join, d}})

	rep, err := Run(context.Background(), g, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !rep.OK() {
		t.Fatalf("Run() diagnostics = %v", rep.Diagnostics)
	}

	lg, lb, lc, lj := node(t, g, gw).Layer, node(t, g, b).Layer, node(t, g, c).Layer, node(t, g, join).Layer
	if lg >= lb || lg >= lc {
		t.Errorf("gateway layer %d not before branches %d, %d", lg, lb, lc)
	}
	if lb >= lj || lc >= lj {
		t.Errorf("branches %d, %d not before join %d", lb, lc, lj)
	}
	nb, nc := node(t, g, b), node(t, g, c)
	if nb.Layer == nc.Layer && nb.Slot == nc.Slot {
		t.Errorf("branches share layer %d and slot %d", nb.Layer, nb.Slot)
	}
	if nb.Bounds().Overlaps(nc.Bounds()) {
		t.Errorf("branch rectangles overlap: %v and %v", nb.Bounds(), nc.Bounds())
	}
	if rep.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", rep.Crossings)
	}
}

func TestRun_CyclicLaneDegrades(t *testing.T) {
	g := build(t, map[int]graph.Kind{
		1: graph.KindStart,
		2: graph.KindTask,
		3: graph.KindTask,
	}, [][2]int{{1, 2}, {2, 3}, {3, 2}})

	rep, err := Run(context.Background(), g, DefaultOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.OK() {
		t.Fatal("Run() reported no diagnostics for a cyclic lane")
	}
	d := rep.Diagnostics[0]
	if d.Code != errors.ErrCodeInfeasibleLayers || d.Stage != StageLayering {
		t.Errorf("diagnostic = %+v, want %s in %s", d, errors.ErrCodeInfeasibleLayers, StageLayering)
	}
	if len(d.Nodes) == 0 {
		t.Error("diagnostic has no cycle nodes")
	}
	if !rep.Lanes[0].Fallback {
		t.Error("lane not marked as fallback")
	}
	if !errors.Is(rep.Err(), errors.ErrCodeInfeasibleLayers) {
		t.Errorf("Err() = %v, want code %s", rep.Err(), errors.ErrCodeInfeasibleLayers)
	}
	for _, n := range g.Nodes() {
		if n.X == 0 && n.Y == 0 {
			t.Errorf("node %d not positioned", n.ID)
		}
	}
}

func TestRun_MissingNode(t *testing.T) {
	g := graph.New()
	g.AddNodeAuto(graph.KindTask, "a", "P", "L")
	g.Edges = append(g.Edges, &graph.Edge{From: 1, To: 9})

	_, err := Run(context.Background(), g, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeMissingNode) {
		t.Errorf("Run() error = %v, want code %s", err, errors.ErrCodeMissingNode)
	}
}

func TestRun_Cancelled(t *testing.T) {
	g := build(t, map[int]graph.Kind{1: graph.KindStart, 2: graph.KindEnd}, [][2]int{{1, 2}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, g, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Run() error = %v, want code %s", err, errors.ErrCodeTimeout)
	}
}

func TestRun_ZeroOptions(t *testing.T) {
	g := build(t, map[int]graph.Kind{1: graph.KindStart, 2: graph.KindEnd}, [][2]int{{1, 2}})
	rep, err := Run(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Routed != 1 {
		t.Errorf("Routed = %d, want 1", rep.Routed)
	}
}

func TestRun_UnroutableEdge(t *testing.T) {
	tests := []struct {
		name string
		opts routing.Options
	}{
		{"search budget exhausted", routing.Options{Margin: 20, Padding: 0, MaxExpansions: 1}},
		{"grid above cell limit", routing.Options{Margin: 20, Padding: 0, MaxCells: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, map[int]graph.Kind{1: graph.KindStart, 2: graph.KindTask, 3: graph.KindEnd},
				[][2]int{{1, 2}, {2, 3}})
			opts := DefaultOptions()
			opts.Router = &routing.Grid{Options: tt.opts}

			rep, err := Run(context.Background(), g, opts)
			if err != nil {
				t.Fatalf("Run() error = %v, want per-edge diagnostics only", err)
			}
			for _, e := range g.Edges {
				if len(e.Points) != 0 {
					t.Errorf("edge %v Points = %v, want empty", e, e.Points)
				}
			}
			if rep.OK() {
				t.Error("OK() = true, want false")
			}
			if rep.Routed != 0 {
				t.Errorf("Routed = %d, want 0", rep.Routed)
			}

			got := rep.Unroutable()
			if len(got) != 2 {
				t.Fatalf("Unroutable() = %v, want 2 diagnostics", got)
			}
			for i, want := range [][2]int{{1, 2}, {2, 3}} {
				d := got[i]
				if d.Code != errors.ErrCodeUnroutableEdge || d.Stage != StageRouting || d.From != want[0] || d.To != want[1] {
					t.Errorf("Unroutable()[%d] = %+v, want %s at %s for %d->%d",
						i, d, errors.ErrCodeUnroutableEdge, StageRouting, want[0], want[1])
				}
			}
			if err := rep.Err(); !errors.Is(err, errors.ErrCodeUnroutableEdge) {
				t.Errorf("Err() = %v, want code %s", err, errors.ErrCodeUnroutableEdge)
			}

			// layers and positions are still assigned
			for _, n := range g.Nodes() {
				if n.Layer == graph.NoLayer || n.X == 0 {
					t.Errorf("node %d not placed: layer %d, x %v", n.ID, n.Layer, n.X)
				}
			}
		})
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
}

func (r *stageRecorder) OnStageComplete(_ context.Context, stage string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func TestRun_Hooks(t *testing.T) {
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})

	g := build(t, map[int]graph.Kind{1: graph.KindStart, 2: graph.KindEnd}, [][2]int{{1, 2}})
	if _, err := Run(context.Background(), g, DefaultOptions()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := strings.Join(rec.stages, ",")
	want := "validate,layering,ordering,position,routing"
	if got != want {
		t.Errorf("stages = %q, want %q", got, want)
	}
}

func TestReport_String(t *testing.T) {
	r := &Report{Lanes: make([]LaneReport, 2), Objective: 3, Crossings: 1, Routed: 4}
	want := "2 lanes, objective 3, 1 crossings, 4 routed, 0 diagnostics"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
