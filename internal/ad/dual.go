package ad

import "math"

// Dual is a forward-mode scalar: a value plus a dense gradient with respect
// to the active parameter vector. A nil gradient marks a constant, so pure
// simulation runs (no sensitivities requested) pay almost nothing.
type Dual struct {
	Val  float64
	Grad []float64
}

// Const wraps a plain value with no sensitivity.
func Const(v float64) Dual {
	return Dual{Val: v}
}

// Var seeds parameter i of an n-dimensional parameter vector: the gradient
// is the i-th unit basis vector.
func Var(v float64, i, n int) Dual {
	g := make([]float64, n)
	g[i] = 1
	return Dual{Val: v, Grad: g}
}

func (a Dual) IsFinite() bool {
	return !math.IsNaN(a.Val) && !math.IsInf(a.Val, 0)
}

// combine returns ca*ga + cb*gb, treating a nil gradient as zero.
func combine(ga, gb []float64, ca, cb float64) []float64 {
	if ga == nil && gb == nil {
		return nil
	}
	n := len(ga)
	if len(gb) > n {
		n = len(gb)
	}
	out := make([]float64, n)
	if ga != nil {
		for i, v := range ga {
			out[i] = ca * v
		}
	}
	if gb != nil {
		for i, v := range gb {
			out[i] += cb * v
		}
	}
	return out
}

// scaleGrad returns c*g, or nil for a nil gradient.
func scaleGrad(g []float64, c float64) []float64 {
	if g == nil {
		return nil
	}
	out := make([]float64, len(g))
	for i, v := range g {
		out[i] = c * v
	}
	return out
}

func (a Dual) Add(b Dual) Dual {
	return Dual{Val: a.Val + b.Val, Grad: combine(a.Grad, b.Grad, 1, 1)}
}

func (a Dual) Sub(b Dual) Dual {
	return Dual{Val: a.Val - b.Val, Grad: combine(a.Grad, b.Grad, 1, -1)}
}

func (a Dual) Mul(b Dual) Dual {
	return Dual{Val: a.Val * b.Val, Grad: combine(a.Grad, b.Grad, b.Val, a.Val)}
}

func (a Dual) Div(b Dual) Dual {
	inv := 1 / b.Val
	return Dual{
		Val:  a.Val * inv,
		Grad: combine(a.Grad, b.Grad, inv, -a.Val*inv*inv),
	}
}

func (a Dual) Neg() Dual {
	return Dual{Val: -a.Val, Grad: scaleGrad(a.Grad, -1)}
}

// Scale multiplies by a plain constant.
func (a Dual) Scale(c float64) Dual {
	return Dual{Val: c * a.Val, Grad: scaleGrad(a.Grad, c)}
}

// Shift adds a plain constant.
func (a Dual) Shift(c float64) Dual {
	return Dual{Val: a.Val + c, Grad: a.Grad}
}

func (a Dual) Square() Dual {
	return Dual{Val: a.Val * a.Val, Grad: scaleGrad(a.Grad, 2*a.Val)}
}

func Sin(a Dual) Dual {
	return Dual{Val: math.Sin(a.Val), Grad: scaleGrad(a.Grad, math.Cos(a.Val))}
}

func Cos(a Dual) Dual {
	return Dual{Val: math.Cos(a.Val), Grad: scaleGrad(a.Grad, -math.Sin(a.Val))}
}

func Exp(a Dual) Dual {
	e := math.Exp(a.Val)
	return Dual{Val: e, Grad: scaleGrad(a.Grad, e)}
}

func Tanh(a Dual) Dual {
	th := math.Tanh(a.Val)
	return Dual{Val: th, Grad: scaleGrad(a.Grad, 1-th*th)}
}

func Sqrt(a Dual) Dual {
	r := math.Sqrt(a.Val)
	return Dual{Val: r, Grad: scaleGrad(a.Grad, 0.5/r)}
}
