package solver

import "github.com/san-kum/hybridsim/internal/ad"

// Stepper advances deterministic dynamics by one step of size h.
type Stepper interface {
	Step(f Drift, x, p ad.Vector, t, h float64) (ad.Vector, error)
}

// axpy returns x + c*k componentwise.
func axpy(x, k ad.Vector, c float64) ad.Vector {
	out := make(ad.Vector, len(x))
	for i := range x {
		out[i] = x[i].Add(k[i].Scale(c))
	}
	return out
}

// Euler is the first-order explicit scheme.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (*Euler) Step(f Drift, x, p ad.Vector, t, h float64) (ad.Vector, error) {
	k, err := f(x, p, t)
	if err != nil {
		return nil, err
	}
	return axpy(x, k, h), nil
}

// RK4 is the classical fourth-order Runge-Kutta scheme.
type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (*RK4) Step(f Drift, x, p ad.Vector, t, h float64) (ad.Vector, error) {
	k1, err := f(x, p, t)
	if err != nil {
		return nil, err
	}
	k2, err := f(axpy(x, k1, h*0.5), p, t+h*0.5)
	if err != nil {
		return nil, err
	}
	k3, err := f(axpy(x, k2, h*0.5), p, t+h*0.5)
	if err != nil {
		return nil, err
	}
	k4, err := f(axpy(x, k3, h), p, t+h)
	if err != nil {
		return nil, err
	}

	h6 := h / 6.0
	out := make(ad.Vector, len(x))
	for i := range x {
		sum := k1[i].Add(k2[i].Scale(2)).Add(k3[i].Scale(2)).Add(k4[i])
		out[i] = x[i].Add(sum.Scale(h6))
	}
	return out, nil
}
