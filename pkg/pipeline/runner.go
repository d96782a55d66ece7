package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/observability"
)

// Cache key types reported to cache hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner executes the pipeline against a cache.
//
// A Runner holds no per-run state. Several goroutines may share one, but
// each must pass its own graph.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner fills nil arguments with a NullCache, the default keyer and
// the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute lays out g and renders opts.Formats. On a layout cache hit the
// returned Result.Graph is a fresh graph decoded from the cache and g is
// left untouched.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{
		Stats: Stats{NodeCount: g.NodeCount(), EdgeCount: len(g.Edges)},
	}

	start := time.Now()
	laid, report, hash, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Graph, res.Report, res.DocHash = laid, report, hash
	res.Stats.LayoutTime = time.Since(start)
	res.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"crossings", report.Crossings,
		"cached", hit,
		"duration", res.Stats.LayoutTime)
	if !report.OK() {
		r.Logger.Warn("layout degraded", "diagnostics", len(report.Diagnostics))
	}

	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// cachedLayout is the cache entry of the layout stage.
type cachedLayout struct {
	Document graph.Document `json:"document"`
	Report   *layout.Report `json:"report"`
}

// LayoutWithCacheInfo runs the engine unless the cache holds a result for
// the same document and options. It returns the positioned graph, its
// report, the input document hash and whether the cache served it.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, *layout.Report, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, "", false, err
	}
	input, err := graph.Marshal(g, graph.FormatJSON)
	if err != nil {
		return nil, nil, "", false, fmt.Errorf("hash document: %w", err)
	}
	hash := cache.Hash(input)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var entry cachedLayout
			if err := json.Unmarshal(data, &entry); err == nil && entry.Report != nil {
				if cached, err := graph.FromDocument(entry.Document); err == nil {
					hooks.OnCacheHit(ctx, keyTypeLayout)
					return cached, entry.Report, hash, true, nil
				}
			}
			// Undecodable entries are recomputed and overwritten.
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	lopts, err := opts.LayoutOptions()
	if err != nil {
		return nil, nil, "", false, err
	}
	report, err := layout.Run(ctx, g, lopts)
	if err != nil {
		return nil, nil, "", false, err
	}

	data, err := json.Marshal(cachedLayout{Document: graph.ToDocument(g), Report: report})
	if err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}
	return g, report, hash, false, nil
}

// RenderWithCacheInfo renders every format, serving all of them from cache
// only when every one is cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	positioned, err := graph.Marshal(g, graph.FormatJSON)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout: %w", err)
	}
	hash := cache.Hash(positioned)
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, keyTypeArtifact)
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		hooks.OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, g, opts.Formats, opts.Detailed)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
