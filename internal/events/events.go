// Package events defines discrete interventions applied during a continuous
// integration: preset-time impulses and post-step condition effects.
package events

import (
	"fmt"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
)

// Effect replaces the state at the instant an event fires. Effects run over
// duals so sensitivities flow through the jump.
type Effect func(x ad.Vector, t float64) ad.Vector

// Predicate decides whether a condition event fires after a step. It must be
// pure; only the effect may change state.
type Predicate func(x ad.Vector, t float64) bool

// PresetTimes fires its effect exactly at each listed time, in order. The
// solver truncates steps so it lands on every trigger time rather than
// interpolating near it.
type PresetTimes struct {
	Times []float64
	Apply Effect
}

// NewPresetTimes validates that trigger times are strictly increasing and
// fails fast otherwise.
func NewPresetTimes(times []float64, apply Effect) (*PresetTimes, error) {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: t[%d]=%g <= t[%d]=%g",
				dynamo.ErrEventOrder, i, times[i], i-1, times[i-1])
		}
	}
	return &PresetTimes{Times: times, Apply: apply}, nil
}

// CheckSpan verifies every trigger lies inside [t0, t1].
func (p *PresetTimes) CheckSpan(t0, t1 float64) error {
	for _, tt := range p.Times {
		if tt < t0 || tt > t1 {
			return fmt.Errorf("%w: t=%g outside [%g, %g]", dynamo.ErrEventUnreachable, tt, t0, t1)
		}
	}
	return nil
}

// Condition runs its effect after every step for which the predicate holds.
type Condition struct {
	When  Predicate
	Apply Effect
}

// Always is the predicate of an every-step event such as renormalization.
func Always(ad.Vector, float64) bool { return true }

// Impulse returns an effect adding amount to each listed state component.
func Impulse(components []int, amount float64) Effect {
	return func(x ad.Vector, t float64) ad.Vector {
		out := x.Clone()
		for _, c := range components {
			out[c] = out[c].Shift(amount)
		}
		return out
	}
}

// Renormalize returns an effect dividing the state by its norm, guarding a
// conservation law that holds only in the continuum limit.
func Renormalize() Effect {
	return func(x ad.Vector, t float64) ad.Vector {
		return x.Normalize()
	}
}
