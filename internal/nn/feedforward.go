// Package nn implements the small feedforward networks embedded in the
// system dynamics: a saturating scalar controller for the qubit drive and a
// linear-output correction term for the dosing model. Networks evaluate over
// duals so their weights participate in the sensitivity pass.
package nn

import (
	"fmt"

	"github.com/san-kum/hybridsim/internal/ad"
)

// FeedForward is a one-hidden-layer network with tanh hidden activation.
// When MaxAmplitude > 0 the output passes through a saturating tanh scaled to
// [-MaxAmplitude, MaxAmplitude]; otherwise the output is linear.
type FeedForward struct {
	In           int
	Hidden       int
	Out          int
	MaxAmplitude float64
}

// NumParams returns the flat weight count: W1, b1, W2, b2 in that order.
func (f *FeedForward) NumParams() int {
	return f.In*f.Hidden + f.Hidden + f.Hidden*f.Out + f.Out
}

// Eval runs the network. w is the flat weight block, x the input vector.
func (f *FeedForward) Eval(w ad.Vector, x ad.Vector) (ad.Vector, error) {
	if len(w) != f.NumParams() {
		return nil, fmt.Errorf("nn: weight block has %d values, network needs %d", len(w), f.NumParams())
	}
	if len(x) != f.In {
		return nil, fmt.Errorf("nn: input has %d components, network takes %d", len(x), f.In)
	}

	off := 0
	w1 := w[off : off+f.In*f.Hidden]
	off += f.In * f.Hidden
	b1 := w[off : off+f.Hidden]
	off += f.Hidden
	w2 := w[off : off+f.Hidden*f.Out]
	off += f.Hidden * f.Out
	b2 := w[off : off+f.Out]

	hidden := make(ad.Vector, f.Hidden)
	for h := 0; h < f.Hidden; h++ {
		sum := b1[h]
		for i := 0; i < f.In; i++ {
			sum = sum.Add(w1[h*f.In+i].Mul(x[i]))
		}
		hidden[h] = ad.Tanh(sum)
	}

	out := make(ad.Vector, f.Out)
	for o := 0; o < f.Out; o++ {
		sum := b2[o]
		for h := 0; h < f.Hidden; h++ {
			sum = sum.Add(w2[o*f.Hidden+h].Mul(hidden[h]))
		}
		if f.MaxAmplitude > 0 {
			sum = ad.Tanh(sum).Scale(f.MaxAmplitude)
		}
		out[o] = sum
	}
	return out, nil
}

// EvalScalar runs a single-output network and returns its one value.
func (f *FeedForward) EvalScalar(w ad.Vector, x ad.Vector) (ad.Dual, error) {
	if f.Out != 1 {
		return ad.Dual{}, fmt.Errorf("nn: EvalScalar on %d-output network", f.Out)
	}
	out, err := f.Eval(w, x)
	if err != nil {
		return ad.Dual{}, err
	}
	return out[0], nil
}
