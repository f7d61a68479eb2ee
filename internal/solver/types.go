package solver

import (
	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/events"
)

// Drift maps (state, params, time) to the deterministic rate of change. It
// must be pure: no hidden state, safe to call from parallel workers.
type Drift func(x, p ad.Vector, t float64) (ad.Vector, error)

// Diffusion maps (state, params, time) to per-component noise scaling.
type Diffusion func(x, p ad.Vector, t float64) (ad.Vector, error)

// Problem describes one hybrid integration: continuous dynamics on [T0, T1]
// with optional discrete events and a checkpoint grid to record.
type Problem struct {
	Drift     Drift
	Diffusion Diffusion // nil for a deterministic system

	T0, T1 float64

	Preset    *events.PresetTimes // fired exactly at each trigger time
	Condition *events.Condition   // checked after every step

	// Checkpoints are the strictly increasing times at which state is
	// recorded. The solver lands on each exactly.
	Checkpoints []float64
}

// Config holds the fixed-step solver settings.
type Config struct {
	Dt      float64
	Stepper Stepper // defaults to RK4 for ODE; SDE always uses Euler–Maruyama
}

// Result is one integration's output: checkpointed dual states (gradients
// intact for the loss) plus step and event counters.
type Result struct {
	Times  []float64
	States []ad.Vector

	Steps         int
	EventsApplied int
}

// Solution strips gradients into the recorded form used by storage and
// plotting.
func (r *Result) Solution() *dynamo.Solution {
	sol := &dynamo.Solution{
		Times:  append([]float64(nil), r.Times...),
		States: make([]dynamo.State, len(r.States)),
	}
	for i, x := range r.States {
		sol.States[i] = dynamo.State(x.Values())
	}
	return sol
}
