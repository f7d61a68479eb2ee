package systems

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/noise"
	"github.com/san-kum/hybridsim/internal/solver"
)

func TestRandomStateIsUnit(t *testing.T) {
	q := NewQubit(1.0, 2.0)
	rnd := rand.New(rand.NewSource(5))

	for i := 0; i < 100; i++ {
		x := q.RandomState(rnd)
		norm := dynamo.State(x).Norm()
		if math.Abs(norm-1) > 1e-12 {
			t.Fatalf("sample %d has norm %g", i, norm)
		}
	}
}

func TestFidelity(t *testing.T) {
	tests := []struct {
		name  string
		state dynamo.State
		want  float64
	}{
		{"ground", dynamo.State{1, 0, 0, 0}, 0},
		{"excited", dynamo.State{0, 0, 1, 0}, 1},
		{"excited with phase", dynamo.State{0, 0, 0, 1}, 1},
		{"equal superposition", dynamo.State{math.Sqrt2 / 2, 0, math.Sqrt2 / 2, 0}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fidelity(tt.state); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Fidelity = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestDecayedRatioComplementsFidelity(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))
	q := NewQubit(1.0, 2.0)

	for i := 0; i < 20; i++ {
		x := q.RandomState(rnd)
		ratio := DecayedRatio(ad.Constants(x)).Val
		if math.Abs(ratio+Fidelity(dynamo.State(x))-1) > 1e-12 {
			t.Fatalf("ratio %g and fidelity %g do not sum to 1", ratio, Fidelity(dynamo.State(x)))
		}
	}
}

// With zero decay the Hamiltonian flow is norm-conserving: the drift must be
// orthogonal to the state.
func TestDriftConservesNormWithoutDecay(t *testing.T) {
	q := NewQubit(1.3, 2.0)
	rnd := rand.New(rand.NewSource(2))

	pv, err := q.NewParams(0, rnd)
	if err != nil {
		t.Fatal(err)
	}
	prob, err := q.Problem(q.Checkpoints(4))
	if err != nil {
		t.Fatal(err)
	}

	p := ad.Constants(pv.Data)
	for i := 0; i < 20; i++ {
		x := ad.Constants(q.RandomState(rnd))
		f, err := prob.Drift(x, p, 0.3)
		if err != nil {
			t.Fatal(err)
		}

		dot := 0.0
		for c := range x {
			dot += x[c].Val * f[c].Val
		}
		if math.Abs(dot) > 1e-12 {
			t.Fatalf("sample %d: x . f = %g, want 0", i, dot)
		}
	}
}

func TestQubitTrajectoryStaysNormalized(t *testing.T) {
	q := NewQubit(1.0, 2.0)
	rnd := rand.New(rand.NewSource(3))

	pv, err := q.NewParams(0.1, rnd)
	if err != nil {
		t.Fatal(err)
	}
	prob, err := q.Problem(q.Checkpoints(10))
	if err != nil {
		t.Fatal(err)
	}

	cfg := solver.Config{Dt: 0.002}
	nz := noise.New(17, q.StateDim(), solver.StepsUpperBound(prob, cfg.Dt), cfg.Dt)

	res, err := solver.Integrate(context.Background(), prob,
		ad.Constants(q.RandomState(rnd)), ad.Constants(pv.Data), cfg, nz)
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

func TestQubitLayoutHasPhysicalBlock(t *testing.T) {
	q := NewQubit(1.0, 2.0)
	layout := q.Layout()

	start, end, err := layout.Range(BlockPhysical)
	if err != nil {
		t.Fatal(err)
	}
	if end-start != 1 {
		t.Errorf("physical block size = %d, want 1", end-start)
	}
	if layout.Total() != q.Net.NumParams()+1 {
		t.Errorf("layout total = %d, want %d", layout.Total(), q.Net.NumParams()+1)
	}
}
