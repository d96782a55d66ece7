package routing

import (
	"fmt"

	"go.uber.org/multierr"
)

// Upper bounds accepted by [Options.Validate].
const (
	MaxMargin        = 500
	MaxPadding       = 2_000
	MaxExpansionsCap = 20_000_000
	// MaxGridCells bounds the obstacle grid; each cell costs 17 bytes.
	MaxGridCells = 25_000_000
)

// Overlay returns o with every non-zero field of over applied.
func (o Options) Overlay(over Options) Options {
	if over.Margin != 0 {
		o.Margin = over.Margin
	}
	if over.Padding != 0 {
		o.Padding = over.Padding
	}
	if over.MaxExpansions != 0 {
		o.MaxExpansions = over.MaxExpansions
	}
	if over.MaxCells != 0 {
		o.MaxCells = over.MaxCells
	}
	return o
}

// Validate checks the settings against the bounds above. Zero
// MaxExpansions and MaxCells select the defaults.
func (o Options) Validate() error {
	var err error
	if o.Margin < 0 || o.Margin > MaxMargin {
		err = multierr.Append(err, fmt.Errorf("margin %v out of range [0, %d]", o.Margin, MaxMargin))
	}
	if o.Padding < 0 || o.Padding > MaxPadding {
		err = multierr.Append(err, fmt.Errorf("padding %v out of range [0, %d]", o.Padding, MaxPadding))
	}
	if o.MaxExpansions < 0 || o.MaxExpansions > MaxExpansionsCap {
		err = multierr.Append(err, fmt.Errorf("max_expansions %d out of range [0, %d]", o.MaxExpansions, MaxExpansionsCap))
	}
	if o.MaxCells < 0 || o.MaxCells > MaxGridCells {
		err = multierr.Append(err, fmt.Errorf("max_cells %d out of range [0, %d]", o.MaxCells, MaxGridCells))
	}
	return err
}
