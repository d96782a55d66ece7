// Package config loads swimlane.toml.
//
// A missing file is not an error: [Load] falls back to [Default]. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
//
//	[layering]
//	max_nodes = 10000
//
//	[ordering]
//	strategy = "barycentric"
//	sweeps = 8
//
//	[routing]
//	router = "grid"
//	margin = 20
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/layout/layering"
	"github.com/matzehuels/swimlane/pkg/layout/ordering"
	"github.com/matzehuels/swimlane/pkg/layout/position"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/milp"
)

// FileName is the config file looked up in the working directory.
const FileName = "swimlane.toml"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the decoded configuration file.
type Config struct {
	Layering Layering `toml:"layering"`
	Ordering Ordering `toml:"ordering"`
	Position Position `toml:"position"`
	Routing  Routing  `toml:"routing"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

type Layering struct {
	MaxNodes int `toml:"max_nodes"`
}

type Ordering struct {
	Strategy string `toml:"strategy"`
	Sweeps   int    `toml:"sweeps"`
}

type Position struct {
	OriginX     float64 `toml:"origin_x"`
	OriginY     float64 `toml:"origin_y"`
	PoolHeader  float64 `toml:"pool_header"`
	LayerWidth  float64 `toml:"layer_width"`
	RefWidth    float64 `toml:"ref_width"`
	RefHeight   float64 `toml:"ref_height"`
	Spacing     float64 `toml:"spacing"`
	LanePadding float64 `toml:"lane_padding"`
	PoolGap     float64 `toml:"pool_gap"`
	MinLayers   int     `toml:"min_layers"`
}

type Routing struct {
	Router        string  `toml:"router"`
	Margin        float64 `toml:"margin"`
	Padding       float64 `toml:"padding"`
	MaxExpansions int     `toml:"max_expansions"`
	MaxCells      int     `toml:"max_cells"`
}

type Cache struct {
	Backend string `toml:"backend"`
	// Dir defaults to the user cache directory.
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	Prefix    string   `toml:"prefix"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	MongoURI  string   `toml:"mongo_uri"`
	MongoDB   string   `toml:"mongo_database"`
}

type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// MaxBodyBytes bounds the request document size.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
	// LayoutTimeout bounds a single layout request.
	LayoutTimeout Duration `toml:"layout_timeout"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	pos := position.DefaultOptions()
	route := routing.DefaultOptions()
	return Config{
		Layering: Layering{MaxNodes: milp.DefaultMaxNodes},
		Ordering: Ordering{Strategy: ordering.NameAuto, Sweeps: ordering.DefaultSweeps},
		Position: Position{
			OriginX:     pos.OriginX,
			OriginY:     pos.OriginY,
			PoolHeader:  pos.PoolHeader,
			LayerWidth:  pos.LayerWidth,
			RefWidth:    pos.RefWidth,
			RefHeight:   pos.RefHeight,
			Spacing:     pos.Spacing,
			LanePadding: pos.LanePadding,
			PoolGap:     pos.PoolGap,
			MinLayers:   pos.MinLayers,
		},
		Routing: Routing{
			Router:        routing.NameGrid,
			Margin:        route.Margin,
			Padding:       route.Padding,
			MaxExpansions: route.MaxExpansions,
			MaxCells:      route.MaxCells,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
			MongoDB: "swimlane",
		},
		Server: Server{
			Addr:          ":8080",
			ReadTimeout:   Duration{10 * time.Second},
			WriteTimeout:  Duration{60 * time.Second},
			MaxBodyBytes:  4 << 20,
			LayoutTimeout: Duration{30 * time.Second},
		},
	}
}

// Load reads path over the defaults. An empty path tries FileName in the
// working directory and tolerates its absence.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and enum names.
func (c Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.Layering.MaxNodes >= 0, "layering.max_nodes must be >= 0")
	check(slices.Contains([]string{ordering.NameAuto, ordering.NameAlignment, ordering.NameBarycentric}, c.Ordering.Strategy),
		"ordering.strategy %q is not one of auto, alignment, barycentric", c.Ordering.Strategy)
	check(c.Ordering.Sweeps >= 0, "ordering.sweeps must be >= 0")
	if err := c.PositionOptions().Validate(); err != nil {
		problems = append(problems, "position: "+err.Error())
	}
	check(c.Routing.Router == routing.NameGrid || c.Routing.Router == routing.NameElbow,
		"routing.router %q is not one of grid, elbow", c.Routing.Router)
	if err := c.RoutingOptions().Validate(); err != nil {
		problems = append(problems, "routing: "+err.Error())
	}
	check(slices.Contains([]string{BackendNone, BackendFile, BackendRedis, BackendMongo}, c.Cache.Backend),
		"cache.backend %q is not one of none, file, redis, mongo", c.Cache.Backend)
	check(c.Cache.Backend != BackendRedis || c.Cache.RedisAddr != "", "cache.redis_addr is required for the redis backend")
	check(c.Cache.Backend != BackendMongo || c.Cache.MongoURI != "", "cache.mongo_uri is required for the mongo backend")
	check(c.Server.MaxBodyBytes > 0, "server.max_body_bytes must be > 0")

	if len(problems) > 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// PositionOptions converts the [position] section.
func (c Config) PositionOptions() position.Options {
	p := c.Position
	return position.Options{
		OriginX:     p.OriginX,
		OriginY:     p.OriginY,
		PoolHeader:  p.PoolHeader,
		LayerWidth:  p.LayerWidth,
		RefWidth:    p.RefWidth,
		RefHeight:   p.RefHeight,
		Spacing:     p.Spacing,
		LanePadding: p.LanePadding,
		PoolGap:     p.PoolGap,
		MinLayers:   p.MinLayers,
	}
}

// RoutingOptions converts the [routing] section.
func (c Config) RoutingOptions() routing.Options {
	return routing.Options{
		Margin:        c.Routing.Margin,
		Padding:       c.Routing.Padding,
		MaxExpansions: c.Routing.MaxExpansions,
		MaxCells:      c.Routing.MaxCells,
	}
}

// LayoutOptions builds engine options from the configuration.
func (c Config) LayoutOptions() (layout.Options, error) {
	o, err := ordering.New(c.Ordering.Strategy, c.Ordering.Sweeps)
	if err != nil {
		return layout.Options{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "ordering")
	}
	r, err := routing.New(c.Routing.Router, c.RoutingOptions())
	if err != nil {
		return layout.Options{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "routing")
	}
	return layout.Options{
		Layering: layering.Options{MaxNodes: c.Layering.MaxNodes},
		Position: c.PositionOptions(),
		Orderer:  o,
		Router:   r,
	}, nil
}
