package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout/layering"
	"github.com/matzehuels/swimlane/pkg/layout/ordering"
	"github.com/matzehuels/swimlane/pkg/layout/position"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/observability"
)

// Stage names reported to hooks and in the Report.
const (
	StageValidate = "validate"
	StageLayering = "layering"
	StageOrdering = "ordering"
	StagePosition = "position"
	StageRouting  = "routing"
)

// Options configures a layout run.
type Options struct {
	Layering layering.Options
	Position position.Options

	// Orderer defaults to ordering.Auto.
	Orderer ordering.Orderer
	// Router defaults to the grid router with routing.DefaultOptions.
	Router routing.Router

	// Logger receives stage progress at debug level and degraded items at
	// warn level. Nil discards.
	Logger *log.Logger
}

// DefaultOptions returns options with every stage at its defaults.
func DefaultOptions() Options {
	return Options{
		Position: position.DefaultOptions(),
		Orderer:  ordering.Auto{},
		Router:   &routing.Grid{Options: routing.DefaultOptions()},
	}
}

func (o *Options) setDefaults() {
	if o.Position == (position.Options{}) {
		o.Position = position.DefaultOptions()
	}
	if o.Orderer == nil {
		o.Orderer = ordering.Auto{}
	}
	if o.Router == nil {
		o.Router = &routing.Grid{Options: routing.DefaultOptions()}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Run lays out g in place.
func Run(ctx context.Context, g *graph.Graph, opts Options) (*Report, error) {
	opts.setDefaults()
	rep := &Report{}
	hooks := observability.Pipeline()

	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "layout cancelled before %s", name)
		}
		hooks.OnStageStart(ctx, name, g.NodeCount())
		start := time.Now()
		err := fn()
		d := time.Since(start)
		hooks.OnStageComplete(ctx, name, d, err)
		rep.Timings = append(rep.Timings, StageTiming{Stage: name, Duration: d})
		opts.Logger.Debug("stage complete", "stage", name, "duration", d)
		return err
	}

	if err := stage(StageValidate, func() error {
		if err := g.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeMissingNode, err, "invalid graph")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage(StageLayering, func() error {
		res, err := layering.Assign(g, opts.Layering)
		if err != nil {
			return err
		}
		rep.addLayering(res)
		for _, lerr := range res.Errors {
			opts.Logger.Warn("lane layering degraded", "pool", lerr.Pool, "lane", lerr.Lane, "cycle", lerr.Cycle, "err", lerr.Err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage(StageOrdering, func() error {
		rep.addCrossings(ordering.Apply(g, opts.Orderer))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage(StagePosition, func() error {
		position.Assign(g, opts.Position)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage(StageRouting, func() error {
		res := opts.Router.Route(g)
		rep.Routed = res.Routed
		for _, e := range res.Unroutable {
			rep.Diagnostics = append(rep.Diagnostics, Diagnostic{
				Code:    errors.ErrCodeUnroutableEdge,
				Stage:   StageRouting,
				From:    e.From,
				To:      e.To,
				Message: "no exit/entry pair yields a path",
			})
			opts.Logger.Warn("edge unroutable", "from", e.From, "to", e.To)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	opts.Logger.Debug("layout complete",
		"nodes", g.NodeCount(),
		"edges", len(g.Edges),
		"crossings", rep.Crossings,
		"diagnostics", len(rep.Diagnostics))
	return rep, nil
}
