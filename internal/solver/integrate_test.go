package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/events"
	"github.com/san-kum/hybridsim/internal/noise"
)

// decay is du/dt = -u, the classic exactly-solvable test system.
func decay(x, p ad.Vector, t float64) (ad.Vector, error) {
	out := make(ad.Vector, len(x))
	for i := range x {
		out[i] = x[i].Neg()
	}
	return out, nil
}

func TestRK4MatchesExponential(t *testing.T) {
	prob := Problem{
		Drift:       decay,
		T0:          0,
		T1:          2,
		Checkpoints: []float64{0, 0.5, 1, 1.5, 2},
	}

	res, err := Integrate(context.Background(), prob, ad.Constants([]float64{1}), nil, Config{Dt: 0.01}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	for k, tk := range res.Times {
		want := math.Exp(-tk)
		got := res.States[k][0].Val
		if math.Abs(got-want) > 1e-8 {
			t.Errorf("u(%g) = %g, want %g", tk, got, want)
		}
	}
}

func TestPresetEventsFireOnceInOrder(t *testing.T) {
	var fired []float64
	var before []float64

	preset, err := events.NewPresetTimes([]float64{1, 2, 4, 8}, func(x ad.Vector, tt float64) ad.Vector {
		fired = append(fired, tt)
		before = append(before, x[0].Val)
		out := x.Clone()
		out[0] = out[0].Shift(1)
		out[1] = out[1].Shift(1)
		return out
	})
	if err != nil {
		t.Fatal(err)
	}

	prob := Problem{
		Drift:       decay,
		T0:          0,
		T1:          10.5,
		Preset:      preset,
		Checkpoints: []float64{1, 2, 4, 8, 10.5},
	}

	res, err := Integrate(context.Background(), prob, ad.Constants([]float64{2, 0}), nil, Config{Dt: 0.01}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	wantTimes := []float64{1, 2, 4, 8}
	if len(fired) != len(wantTimes) {
		t.Fatalf("effect fired %d times, want %d", len(fired), len(wantTimes))
	}
	for i, w := range wantTimes {
		if fired[i] != w {
			t.Errorf("firing %d at t=%g, want t=%g", i, fired[i], w)
		}
	}

	// Checkpoints at trigger times record the post-event state:
	// state just before + 1.
	for i := 0; i < 4; i++ {
		got := res.States[i][0].Val
		want := before[i] + 1
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("checkpoint at t=%g records %g, want effect(before)=%g", res.Times[i], got, want)
		}
	}
	if res.EventsApplied != 4 {
		t.Errorf("EventsApplied = %d, want 4", res.EventsApplied)
	}
}

func TestConditionEventKeepsNormOne(t *testing.T) {
	// Pure rotation plus an aggressive Euler step would drift the norm;
	// the renormalization event must pin it back every step.
	rotate := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		return ad.Vector{x[1].Neg(), x[0]}, nil
	}

	prob := Problem{
		Drift:       rotate,
		T0:          0,
		T1:          5,
		Condition:   &events.Condition{When: events.Always, Apply: events.Renormalize()},
		Checkpoints: []float64{1, 2, 3, 4, 5},
	}

	res, err := Integrate(context.Background(), prob, ad.Constants([]float64{1, 0}), nil,
		Config{Dt: 0.05, Stepper: NewEuler()}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	for k := range res.States {
		norm := dynamo.State(res.States[k].Values()).Norm()
		if math.Abs(norm-1) > 1e-5 {
			t.Errorf("checkpoint %d norm = %g, want 1", k, norm)
		}
	}
}

func TestDeterminism(t *testing.T) {
	g := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		return ad.Vector{ad.Const(0.3), ad.Const(0.3)}, nil
	}
	prob := Problem{
		Drift:       decay,
		Diffusion:   g,
		T0:          0,
		T1:          1,
		Checkpoints: []float64{0.25, 0.5, 0.75, 1},
	}
	cfg := Config{Dt: 0.01}
	x0 := ad.Constants([]float64{1, 1})

	run := func() *Result {
		nz := noise.New(42, 2, StepsUpperBound(prob, cfg.Dt), cfg.Dt)
		res, err := Integrate(context.Background(), prob, x0, nil, cfg, nz)
		if err != nil {
			t.Fatalf("integrate failed: %v", err)
		}
		return res
	}

	a, b := run(), run()
	for k := range a.States {
		for i := range a.States[k] {
			if a.States[k][i].Val != b.States[k][i].Val {
				t.Fatalf("same noise produced different output at checkpoint %d component %d", k, i)
			}
		}
	}
}

func TestDivergenceDetected(t *testing.T) {
	blowup := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		return ad.Vector{x[0].Square().Scale(1e6)}, nil
	}
	prob := Problem{Drift: blowup, T0: 0, T1: 10, Checkpoints: []float64{10}}

	_, err := Integrate(context.Background(), prob, ad.Constants([]float64{10}), nil, Config{Dt: 0.1}, nil)
	if !errors.Is(err, dynamo.ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	base := Problem{Drift: decay, T0: 0, T1: 1, Checkpoints: []float64{1}}

	tests := []struct {
		name   string
		mutate func(p *Problem, c *Config)
		want   error
	}{
		{"zero dt", func(p *Problem, c *Config) { c.Dt = 0 }, dynamo.ErrBadConfig},
		{"negative dt", func(p *Problem, c *Config) { c.Dt = -0.1 }, dynamo.ErrBadConfig},
		{"inverted span", func(p *Problem, c *Config) { p.T1 = -1 }, dynamo.ErrBadConfig},
		{"nil drift", func(p *Problem, c *Config) { p.Drift = nil }, dynamo.ErrBadConfig},
		{"checkpoint outside span", func(p *Problem, c *Config) { p.Checkpoints = []float64{2} }, dynamo.ErrBadConfig},
		{"unsorted checkpoints", func(p *Problem, c *Config) { p.Checkpoints = []float64{0.5, 0.25} }, dynamo.ErrBadConfig},
		{"sde without noise", func(p *Problem, c *Config) {
			p.Diffusion = func(x, pp ad.Vector, t float64) (ad.Vector, error) { return x, nil }
		}, dynamo.ErrBadConfig},
		{"trigger outside span", func(p *Problem, c *Config) {
			p.Preset, _ = events.NewPresetTimes([]float64{5}, events.Impulse([]int{0}, 1))
		}, dynamo.ErrEventUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prob := base
			cfg := Config{Dt: 0.01}
			tt.mutate(&prob, &cfg)

			_, err := Integrate(context.Background(), prob, ad.Constants([]float64{1}), nil, cfg, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGradientThroughSolveWithEvents(t *testing.T) {
	// du/dt = -p0*u with an impulse at t=0.5; sensitivity of u(1) to p0
	// must survive the jump.
	drift := func(x, p ad.Vector, t float64) (ad.Vector, error) {
		return ad.Vector{x[0].Mul(p[0]).Neg()}, nil
	}
	preset, err := events.NewPresetTimes([]float64{0.5}, events.Impulse([]int{0}, 1))
	if err != nil {
		t.Fatal(err)
	}
	prob := Problem{Drift: drift, T0: 0, T1: 1, Preset: preset, Checkpoints: []float64{1}}
	cfg := Config{Dt: 0.01}

	terminal := func(pv []float64) (float64, []float64, error) {
		return ad.Gradient(pv, func(p ad.Vector) (ad.Dual, error) {
			res, err := Integrate(context.Background(), prob, ad.Constants([]float64{2}), p, cfg, nil)
			if err != nil {
				return ad.Dual{}, err
			}
			return res.States[0][0], nil
		})
	}

	p0 := []float64{0.8}
	val, grad, err := terminal(p0)
	if err != nil {
		t.Fatalf("gradient failed: %v", err)
	}

	// Closed form: u(1) = 2*exp(-p) + exp(-p/2), d/dp = -2*exp(-p) - exp(-p/2)/2.
	wantVal := 2*math.Exp(-0.8) + math.Exp(-0.4)
	wantGrad := -2*math.Exp(-0.8) - 0.5*math.Exp(-0.4)
	if math.Abs(val-wantVal) > 1e-6 {
		t.Errorf("u(1) = %g, want %g", val, wantVal)
	}
	if math.Abs(grad[0]-wantGrad)/math.Abs(wantGrad) > 1e-4 {
		t.Errorf("du/dp = %g, want %g", grad[0], wantGrad)
	}

	// And against finite differences.
	const h = 1e-6
	vplus, _, err := terminal([]float64{0.8 + h})
	if err != nil {
		t.Fatal(err)
	}
	fd := (vplus - val) / h
	if math.Abs(fd-grad[0])/math.Abs(grad[0]) > 1e-2 {
		t.Errorf("du/dp = %g, finite difference %g", grad[0], fd)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prob := Problem{Drift: decay, T0: 0, T1: 1, Checkpoints: []float64{1}}
	_, err := Integrate(ctx, prob, ad.Constants([]float64{1}), nil, Config{Dt: 0.01}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
