// Package noise generates Brownian-increment realizations for SDE
// integration. A realization is drawn once per trajectory per loss
// evaluation and never reused, keeping gradient estimates unbiased.
package noise

import (
	"math"
	"math/rand"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

// Realization is a precomputed sequence of per-component Brownian increments
// on a nominal step grid of size Dt. Increment i is distributed N(0, Dt) per
// component; when the solver truncates a step to land on an event or
// checkpoint time it rescales the increment to the actual step size.
type Realization struct {
	Dt         float64
	Increments [][]float64
}

// New draws a realization of steps increments of dimension dim from a seeded
// source. The same seed always yields the same realization.
func New(seed int64, dim, steps int, dt float64) *Realization {
	rnd := rand.New(rand.NewSource(seed))
	sqdt := math.Sqrt(dt)

	inc := make([][]float64, steps)
	for i := range inc {
		row := make([]float64, dim)
		for j := range row {
			row[j] = rnd.NormFloat64() * sqdt
		}
		inc[i] = row
	}
	return &Realization{Dt: dt, Increments: inc}
}

// At returns the increment for step i scaled to an actual step size h. For
// h == Dt this is the raw increment; a truncated step scales by sqrt(h/Dt)
// so the increment stays N(0, h).
func (r *Realization) At(i int, h float64) ([]float64, error) {
	if i >= len(r.Increments) {
		return nil, dynamo.ErrNoiseGrid
	}
	raw := r.Increments[i]
	if h == r.Dt {
		return raw, nil
	}
	scale := math.Sqrt(h / r.Dt)
	out := make([]float64, len(raw))
	for j, v := range raw {
		out[j] = v * scale
	}
	return out, nil
}

// Dim returns the per-step increment dimension.
func (r *Realization) Dim() int {
	if len(r.Increments) == 0 {
		return 0
	}
	return len(r.Increments[0])
}
