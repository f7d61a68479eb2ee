// Package solver implements fixed-step integration of hybrid ODE/SDE systems
// over dual numbers, so every trajectory output is differentiable with
// respect to the parameter vector. Discrete events are applied by landing
// step boundaries exactly on trigger times, never by interpolation.
package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/noise"
)

// StepsUpperBound bounds how many steps an integration can take, sizing
// noise realizations: one step per dt plus one truncated step per landing.
func StepsUpperBound(prob Problem, dt float64) int {
	span := prob.T1 - prob.T0
	n := int(math.Ceil(span/dt)) + len(prob.Checkpoints) + 4
	if prob.Preset != nil {
		n += len(prob.Preset.Times)
	}
	return n
}

func validate(prob Problem, cfg Config, nz *noise.Realization) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt=%g", dynamo.ErrBadConfig, cfg.Dt)
	}
	if prob.T1 <= prob.T0 {
		return fmt.Errorf("%w: time span [%g, %g]", dynamo.ErrBadConfig, prob.T0, prob.T1)
	}
	if prob.Drift == nil {
		return fmt.Errorf("%w: nil drift", dynamo.ErrBadConfig)
	}
	for i, c := range prob.Checkpoints {
		if c < prob.T0 || c > prob.T1 {
			return fmt.Errorf("%w: checkpoint t=%g outside span", dynamo.ErrBadConfig, c)
		}
		if i > 0 && c <= prob.Checkpoints[i-1] {
			return fmt.Errorf("%w: checkpoints not strictly increasing at %d", dynamo.ErrBadConfig, i)
		}
	}
	if prob.Preset != nil {
		if err := prob.Preset.CheckSpan(prob.T0, prob.T1); err != nil {
			return err
		}
	}
	if prob.Diffusion != nil && nz == nil {
		return fmt.Errorf("%w: stochastic problem without a noise realization", dynamo.ErrBadConfig)
	}
	return nil
}

// Integrate advances the problem from T0 to T1 with fixed step cfg.Dt,
// truncating steps to land exactly on event and checkpoint times. For
// stochastic problems (Diffusion set) the scheme is Euler–Maruyama driven by
// the supplied realization; deterministic problems use cfg.Stepper (RK4 by
// default).
func Integrate(ctx context.Context, prob Problem, x0, p ad.Vector, cfg Config, nz *noise.Realization) (*Result, error) {
	if err := validate(prob, cfg, nz); err != nil {
		return nil, err
	}

	stepper := cfg.Stepper
	if stepper == nil {
		stepper = NewRK4()
	}

	eps := cfg.Dt * 1e-9
	res := &Result{}

	x := x0.Clone()
	t := prob.T0
	presetIdx, cpIdx := 0, 0

	// Triggers or checkpoints at the start of the span fire before any
	// stepping.
	if prob.Preset != nil {
		for presetIdx < len(prob.Preset.Times) && prob.Preset.Times[presetIdx] <= t+eps {
			x = prob.Preset.Apply(x, t)
			presetIdx++
			res.EventsApplied++
		}
	}
	if cpIdx < len(prob.Checkpoints) && prob.Checkpoints[cpIdx] <= t+eps {
		res.Times = append(res.Times, t)
		res.States = append(res.States, x)
		cpIdx++
	}

	for t < prob.T1-eps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		nextLanding := prob.T1
		if prob.Preset != nil && presetIdx < len(prob.Preset.Times) && prob.Preset.Times[presetIdx] < nextLanding {
			nextLanding = prob.Preset.Times[presetIdx]
		}
		if cpIdx < len(prob.Checkpoints) && prob.Checkpoints[cpIdx] < nextLanding {
			nextLanding = prob.Checkpoints[cpIdx]
		}

		h := cfg.Dt
		landed := false
		if t+h >= nextLanding-eps {
			h = nextLanding - t
			landed = true
		}

		var newX ad.Vector
		var err error
		if prob.Diffusion != nil {
			newX, err = maruyamaStep(prob, x, p, t, h, res.Steps, nz)
		} else {
			newX, err = stepper.Step(prob.Drift, x, p, t, h)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d (t=%.6f): %w", res.Steps, t, err)
		}
		if len(newX) != len(x) {
			return nil, fmt.Errorf("step %d: %w: drift returned %d components for %d-dim state",
				res.Steps, dynamo.ErrDimensionMismatch, len(newX), len(x))
		}
		if !newX.IsFinite() {
			return nil, fmt.Errorf("step %d (t=%.6f): %w", res.Steps, t, dynamo.ErrDiverged)
		}

		x = newX
		if landed {
			t = nextLanding
		} else {
			t += h
		}
		res.Steps++

		// Condition events are checked after every step, never interpolated.
		if prob.Condition != nil && prob.Condition.When(x, t) {
			x = prob.Condition.Apply(x, t)
			res.EventsApplied++
		}

		if prob.Preset != nil && presetIdx < len(prob.Preset.Times) &&
			math.Abs(t-prob.Preset.Times[presetIdx]) <= eps {
			x = prob.Preset.Apply(x, t)
			presetIdx++
			res.EventsApplied++
		}

		if cpIdx < len(prob.Checkpoints) && math.Abs(t-prob.Checkpoints[cpIdx]) <= eps {
			res.Times = append(res.Times, t)
			res.States = append(res.States, x)
			cpIdx++
		}
	}

	if prob.Preset != nil && presetIdx != len(prob.Preset.Times) {
		return nil, fmt.Errorf("%w: %d trigger(s) never reached", dynamo.ErrEventUnreachable,
			len(prob.Preset.Times)-presetIdx)
	}
	if cpIdx != len(prob.Checkpoints) {
		return nil, fmt.Errorf("%w: %d checkpoint(s) never reached", dynamo.ErrBadConfig,
			len(prob.Checkpoints)-cpIdx)
	}
	return res, nil
}

func maruyamaStep(prob Problem, x, p ad.Vector, t, h float64, step int, nz *noise.Realization) (ad.Vector, error) {
	f, err := prob.Drift(x, p, t)
	if err != nil {
		return nil, err
	}
	g, err := prob.Diffusion(x, p, t)
	if err != nil {
		return nil, err
	}
	if len(g) != len(x) {
		return nil, fmt.Errorf("%w: diffusion returned %d components for %d-dim state",
			dynamo.ErrDimensionMismatch, len(g), len(x))
	}

	dw, err := nz.At(step, h)
	if err != nil {
		return nil, err
	}
	if len(dw) < len(x) {
		return nil, fmt.Errorf("%w: %d noise components for %d-dim state",
			dynamo.ErrDimensionMismatch, len(dw), len(x))
	}

	out := make(ad.Vector, len(x))
	for i := range x {
		out[i] = x[i].Add(f[i].Scale(h)).Add(g[i].Scale(dw[i]))
	}
	return out, nil
}
