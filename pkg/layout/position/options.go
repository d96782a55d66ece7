package position

import (
	"fmt"

	"go.uber.org/multierr"
)

// MaxPixels bounds every layout constant.
const MaxPixels = 10_000

// Overlay returns o with every non-zero field of over applied.
func (o Options) Overlay(over Options) Options {
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&o.OriginX, over.OriginX)
	set(&o.OriginY, over.OriginY)
	set(&o.PoolHeader, over.PoolHeader)
	set(&o.LayerWidth, over.LayerWidth)
	set(&o.RefWidth, over.RefWidth)
	set(&o.RefHeight, over.RefHeight)
	set(&o.Spacing, over.Spacing)
	set(&o.LanePadding, over.LanePadding)
	set(&o.PoolGap, over.PoolGap)
	if over.MinLayers != 0 {
		o.MinLayers = over.MinLayers
	}
	return o
}

// Validate checks that the constants keep coordinates non-negative and
// same-layer nodes apart.
func (o Options) Validate() error {
	var err error
	inRange := func(name string, v, lo float64) {
		if v < lo || v > MaxPixels {
			err = multierr.Append(err, fmt.Errorf("%s %v out of range [%v, %d]", name, v, lo, MaxPixels))
		}
	}
	inRange("origin_x", o.OriginX, 0)
	inRange("origin_y", o.OriginY, 0)
	inRange("pool_header", o.PoolHeader, 0)
	inRange("layer_width", o.LayerWidth, 1)
	inRange("ref_width", o.RefWidth, 1)
	inRange("ref_height", o.RefHeight, 1)
	inRange("spacing", o.Spacing, 1)
	inRange("lane_padding", o.LanePadding, 0)
	inRange("pool_gap", o.PoolGap, 0)
	if o.MinLayers < 1 || o.MinLayers > 1000 {
		err = multierr.Append(err, fmt.Errorf("min_layers %d out of range [1, 1000]", o.MinLayers))
	}
	return err
}
