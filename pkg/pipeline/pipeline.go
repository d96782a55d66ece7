// Package pipeline runs load → layout → render with caching.
//
// The CLI and the HTTP server both go through a [Runner] so that options,
// cache keys and hooks behave the same at every entry point.
//
// # Stages
//
//  1. Load: decode a JSON or YAML graph document
//  2. Layout: run the layout engine; the positioned document and its report
//     are cached under a hash of the input document and the layout options
//  3. Render: produce the requested formats (json, yaml, bpmn, dot, svg);
//     each artifact is cached under a hash of the positioned document
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	g, err := pipeline.Load(ctx, "order.yaml")
//	res, err := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"bpmn"}})
//	os.WriteFile("order.bpmn", res.Artifacts["bpmn"], 0o644)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/config"
	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/layout/layering"
	"github.com/matzehuels/swimlane/pkg/layout/ordering"
	"github.com/matzehuels/swimlane/pkg/layout/position"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/milp"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatBPMN = "bpmn"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatYAML, FormatBPMN, FormatDOT, FormatSVG}

// Extensions maps formats to file extensions.
var Extensions = map[string]string{
	FormatJSON: ".json",
	FormatYAML: ".yaml",
	FormatBPMN: ".bpmn",
	FormatDOT:  ".dot",
	FormatSVG:  ".svg",
}

// DefaultTTL is how long cached layouts and artifacts live.
const DefaultTTL = 24 * time.Hour

// Upper bounds for the solver and ordering effort a run may request.
const (
	MaxSweeps      = 1_000
	MaxSolverNodes = 10 * milp.DefaultMaxNodes
)

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats)
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a pipeline run. It is also the JSON body accepted by
// the HTTP API next to the document.
type Options struct {
	// Layout options
	Ordering string            `json:"ordering,omitempty"`
	Sweeps   int               `json:"sweeps,omitempty"`
	Router   string            `json:"router,omitempty"`
	MaxNodes int               `json:"max_nodes,omitempty"`
	Position *position.Options `json:"position,omitempty"`
	Routing  *routing.Options  `json:"routing,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Cache options
	Refresh bool          `json:"refresh,omitempty"`
	TTL     time.Duration `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// OptionsFromConfig fills options from a configuration file.
func OptionsFromConfig(cfg config.Config) Options {
	pos := cfg.PositionOptions()
	route := cfg.RoutingOptions()
	return Options{
		Ordering: cfg.Ordering.Strategy,
		Sweeps:   cfg.Ordering.Sweeps,
		Router:   cfg.Routing.Router,
		MaxNodes: cfg.Layering.MaxNodes,
		Position: &pos,
		Routing:  &route,
		TTL:      cfg.Cache.TTL.Duration,
	}
}

// Result holds the outputs of a run.
type Result struct {
	// Graph is the positioned graph.
	Graph *graph.Graph
	// DocHash is the content hash of the input document.
	DocHash string
	Report  *layout.Report
	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// ValidateAndSetDefaults applies defaults, then checks names and value
// ranges. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Ordering == "" {
		o.Ordering = ordering.NameAuto
	}
	if o.Sweeps == 0 {
		o.Sweeps = ordering.DefaultSweeps
	}
	if o.Router == "" {
		o.Router = routing.NameGrid
	}
	if o.Position == nil {
		p := position.DefaultOptions()
		o.Position = &p
	}
	if o.Routing == nil {
		r := routing.DefaultOptions()
		o.Routing = &r
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Sweeps < 0 || o.Sweeps > MaxSweeps {
		return errors.New(errors.ErrCodeInvalidInput, "sweeps %d out of range [0, %d]", o.Sweeps, MaxSweeps)
	}
	if o.MaxNodes < 0 || o.MaxNodes > MaxSolverNodes {
		return errors.New(errors.ErrCodeInvalidInput, "max_nodes %d out of range [0, %d]", o.MaxNodes, MaxSolverNodes)
	}
	if err := o.Position.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "position options")
	}
	if err := o.Routing.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "routing options")
	}
	if _, err := o.LayoutOptions(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// LayoutOptions builds engine options.
func (o *Options) LayoutOptions() (layout.Options, error) {
	ord, err := ordering.New(o.Ordering, o.Sweeps)
	if err != nil {
		return layout.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "ordering")
	}
	routeOpts := routing.DefaultOptions()
	if o.Routing != nil {
		routeOpts = *o.Routing
	}
	router, err := routing.New(o.Router, routeOpts)
	if err != nil {
		return layout.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "router")
	}
	opts := layout.Options{
		Layering: layering.Options{MaxNodes: o.MaxNodes},
		Orderer:  ord,
		Router:   router,
		Logger:   o.Logger,
	}
	if o.Position != nil {
		opts.Position = *o.Position
	}
	return opts, nil
}

// LayoutKeyOpts returns the cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Ordering: o.Ordering,
		Sweeps:   o.Sweeps,
		Routing:  o.Router,
		MaxNodes: o.MaxNodes,
		Tuning:   []any{o.Position, o.Routing},
	}
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	f := format
	if format == FormatDOT || format == FormatSVG {
		f = fmt.Sprintf("%s:detailed=%t", format, o.Detailed)
	}
	return cache.ArtifactKeyOpts{Format: f}
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
