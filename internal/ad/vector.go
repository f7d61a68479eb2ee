package ad

// Vector is a state or parameter vector of dual scalars.
type Vector []Dual

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Values strips the gradients, returning plain floats.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v))
	for i, d := range v {
		out[i] = d.Val
	}
	return out
}

func (v Vector) IsFinite() bool {
	for _, d := range v {
		if !d.IsFinite() {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm as a dual, so normalization effects stay
// differentiable.
func (v Vector) Norm() Dual {
	sum := Const(0)
	for _, d := range v {
		sum = sum.Add(d.Square())
	}
	return Sqrt(sum)
}

// Normalize divides every component by the vector norm.
func (v Vector) Normalize() Vector {
	n := v.Norm()
	out := make(Vector, len(v))
	for i, d := range v {
		out[i] = d.Div(n)
	}
	return out
}

// Constants lifts plain floats into constant duals.
func Constants(xs []float64) Vector {
	out := make(Vector, len(xs))
	for i, x := range xs {
		out[i] = Const(x)
	}
	return out
}

// Seed lifts a parameter vector into duals, each component seeded as an
// independent variable.
func Seed(p []float64) Vector {
	out := make(Vector, len(p))
	for i, x := range p {
		out[i] = Var(x, i, len(p))
	}
	return out
}

// Gradient evaluates f at p with seeded duals and returns the scalar value
// together with d(f)/dp. A constant result yields a zero gradient.
func Gradient(p []float64, f func(Vector) (Dual, error)) (float64, []float64, error) {
	out, err := f(Seed(p))
	if err != nil {
		return 0, nil, err
	}
	grad := make([]float64, len(p))
	copy(grad, out.Grad)
	return out.Val, grad, nil
}
