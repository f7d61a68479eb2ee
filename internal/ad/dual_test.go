package ad

import (
	"math"
	"testing"
)

func TestDualArithmetic(t *testing.T) {
	x := Var(3.0, 0, 2)
	y := Var(2.0, 1, 2)

	tests := []struct {
		name    string
		got     Dual
		wantVal float64
		wantDx  float64
		wantDy  float64
	}{
		{"add", x.Add(y), 5, 1, 1},
		{"sub", x.Sub(y), 1, 1, -1},
		{"mul", x.Mul(y), 6, 2, 3},
		{"div", x.Div(y), 1.5, 0.5, -0.75},
		{"neg", x.Neg(), -3, -1, 0},
		{"scale", x.Scale(4), 12, 4, 0},
		{"shift", x.Shift(1), 4, 1, 0},
		{"square", y.Square(), 4, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got.Val-tt.wantVal) > 1e-12 {
				t.Errorf("value = %g, want %g", tt.got.Val, tt.wantVal)
			}
			if math.Abs(tt.got.Grad[0]-tt.wantDx) > 1e-12 {
				t.Errorf("d/dx = %g, want %g", tt.got.Grad[0], tt.wantDx)
			}
			if math.Abs(tt.got.Grad[1]-tt.wantDy) > 1e-12 {
				t.Errorf("d/dy = %g, want %g", tt.got.Grad[1], tt.wantDy)
			}
		})
	}
}

func TestConstantsHaveNilGradient(t *testing.T) {
	c := Const(5).Mul(Const(3))
	if c.Grad != nil {
		t.Errorf("constant product carries gradient %v", c.Grad)
	}
	if c.Val != 15 {
		t.Errorf("value = %g, want 15", c.Val)
	}
}

func TestElementaryFunctions(t *testing.T) {
	x := Var(0.7, 0, 1)

	tests := []struct {
		name  string
		got   Dual
		val   float64
		deriv float64
	}{
		{"sin", Sin(x), math.Sin(0.7), math.Cos(0.7)},
		{"cos", Cos(x), math.Cos(0.7), -math.Sin(0.7)},
		{"exp", Exp(x), math.Exp(0.7), math.Exp(0.7)},
		{"tanh", Tanh(x), math.Tanh(0.7), 1 - math.Tanh(0.7)*math.Tanh(0.7)},
		{"sqrt", Sqrt(x), math.Sqrt(0.7), 0.5 / math.Sqrt(0.7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got.Val-tt.val) > 1e-12 {
				t.Errorf("value = %g, want %g", tt.got.Val, tt.val)
			}
			if math.Abs(tt.got.Grad[0]-tt.deriv) > 1e-12 {
				t.Errorf("deriv = %g, want %g", tt.got.Grad[0], tt.deriv)
			}
		})
	}
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	// f(p) = sin(p0)*p1 + exp(p0*p1)
	f := func(p Vector) (Dual, error) {
		return Sin(p[0]).Mul(p[1]).Add(Exp(p[0].Mul(p[1]))), nil
	}
	p := []float64{0.3, -0.8}

	val, grad, err := Gradient(p, f)
	if err != nil {
		t.Fatalf("gradient failed: %v", err)
	}

	eval := func(q []float64) float64 {
		out, _ := f(Constants(q))
		return out.Val
	}
	if math.Abs(val-eval(p)) > 1e-12 {
		t.Errorf("primal value mismatch: %g vs %g", val, eval(p))
	}

	const h = 1e-6
	for k := range p {
		bumped := append([]float64(nil), p...)
		bumped[k] += h
		fd := (eval(bumped) - eval(p)) / h
		if math.Abs(fd-grad[k]) > 1e-4 {
			t.Errorf("grad[%d] = %g, finite difference %g", k, grad[k], fd)
		}
	}
}

func TestNormalizePreservesDirection(t *testing.T) {
	v := Constants([]float64{3, 4})
	n := v.Normalize()

	if math.Abs(n.Norm().Val-1) > 1e-12 {
		t.Errorf("norm after normalize = %g, want 1", n.Norm().Val)
	}
	if math.Abs(n[0].Val-0.6) > 1e-12 || math.Abs(n[1].Val-0.8) > 1e-12 {
		t.Errorf("direction changed: %v", n.Values())
	}
}
