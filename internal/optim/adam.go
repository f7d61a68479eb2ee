// Package optim provides first-order parameter updates and hyperparameter
// search for the training loop.
package optim

import (
	"fmt"
	"math"
)

// Adam is the moment-based adaptive update rule. The optimizer owns the
// canonical parameter vector passed to Step and mutates it in place; every
// other consumer works on snapshots.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	m    []float64
	v    []float64
	step int
}

// NewAdam returns an optimizer with the usual moment defaults.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Step applies one update of p from grad.
func (a *Adam) Step(p, grad []float64) error {
	if len(p) != len(grad) {
		return fmt.Errorf("optim: %d parameters but %d gradient components", len(p), len(grad))
	}
	if a.m == nil {
		a.m = make([]float64, len(p))
		a.v = make([]float64, len(p))
	}
	if len(a.m) != len(p) {
		return fmt.Errorf("optim: parameter dimension changed from %d to %d", len(a.m), len(p))
	}

	a.step++
	c1 := 1 - math.Pow(a.Beta1, float64(a.step))
	c2 := 1 - math.Pow(a.Beta2, float64(a.step))

	for i := range p {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*grad[i]
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*grad[i]*grad[i]

		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		p[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
	return nil
}

// Reset clears the accumulated moments.
func (a *Adam) Reset() {
	a.m, a.v = nil, nil
	a.step = 0
}
