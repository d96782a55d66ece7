package layout

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/layout/layering"
	"github.com/matzehuels/swimlane/pkg/layout/ordering"
)

// Diagnostic is a per-item failure that degraded the layout without
// aborting it.
type Diagnostic struct {
	Code  errors.Code `json:"code" yaml:"code"`
	Stage string      `json:"stage" yaml:"stage"`

	// Pool and Lane identify the lane for layering diagnostics.
	Pool string `json:"pool,omitempty" yaml:"pool,omitempty"`
	Lane string `json:"lane,omitempty" yaml:"lane,omitempty"`
	// Nodes lists the node ids involved, such as a cycle.
	Nodes []int `json:"nodes,omitempty" yaml:"nodes,omitempty"`

	// From and To identify the edge for routing diagnostics.
	From int `json:"from,omitempty" yaml:"from,omitempty"`
	To   int `json:"to,omitempty" yaml:"to,omitempty"`

	Message string `json:"message" yaml:"message"`
}

// Err converts the diagnostic into a structured error.
func (d Diagnostic) Err() error {
	if d.From != 0 || d.To != 0 {
		return errors.New(d.Code, "edge %d->%d: %s", d.From, d.To, d.Message)
	}
	return errors.New(d.Code, "pool %q lane %q: %s", d.Pool, d.Lane, d.Message)
}

// LaneReport summarizes one lane.
type LaneReport struct {
	Pool      string `json:"pool" yaml:"pool"`
	Lane      string `json:"lane" yaml:"lane"`
	Objective int    `json:"objective" yaml:"objective"`
	Crossings int    `json:"crossings" yaml:"crossings"`
	Fallback  bool   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// StageTiming records how long a stage ran.
type StageTiming struct {
	Stage    string        `json:"stage" yaml:"stage"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the outcome of a layout run.
type Report struct {
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Lanes       []LaneReport  `json:"lanes" yaml:"lanes"`
	Objective   int           `json:"objective" yaml:"objective"`
	Crossings   int           `json:"crossings" yaml:"crossings"`
	Routed      int           `json:"routed" yaml:"routed"`
	Timings     []StageTiming `json:"timings,omitempty" yaml:"timings,omitempty"`
}

// OK reports whether the run finished without diagnostics.
func (r *Report) OK() bool { return len(r.Diagnostics) == 0 }

// Err combines all diagnostics into one error, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, d := range r.Diagnostics {
		err = multierr.Append(err, d.Err())
	}
	return err
}

// Unroutable returns the routing diagnostics.
func (r *Report) Unroutable() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Code == errors.ErrCodeUnroutableEdge {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) lane(pool, lane string) *LaneReport {
	for i := range r.Lanes {
		if r.Lanes[i].Pool == pool && r.Lanes[i].Lane == lane {
			return &r.Lanes[i]
		}
	}
	r.Lanes = append(r.Lanes, LaneReport{Pool: pool, Lane: lane})
	return &r.Lanes[len(r.Lanes)-1]
}

func (r *Report) addLayering(res *layering.Result) {
	for _, l := range res.Lanes {
		lr := r.lane(l.Pool, l.Lane)
		lr.Objective, lr.Fallback = l.Objective, l.Fallback
	}
	r.Objective = res.Objective()
	for _, lerr := range res.Errors {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Code:    errors.GetCode(lerr),
			Stage:   StageLayering,
			Pool:    lerr.Pool,
			Lane:    lerr.Lane,
			Nodes:   lerr.Cycle,
			Message: errors.UserMessage(lerr),
		})
	}
}

func (r *Report) addCrossings(lanes []ordering.LaneCrossings) {
	r.Crossings = 0
	for _, c := range lanes {
		r.lane(c.Pool, c.Lane).Crossings = c.Crossings
		r.Crossings += c.Crossings
	}
}

// String summarizes the report on one line.
func (r *Report) String() string {
	return fmt.Sprintf("%d lanes, objective %d, %d crossings, %d routed, %d diagnostics",
		len(r.Lanes), r.Objective, r.Crossings, r.Routed, len(r.Diagnostics))
}
