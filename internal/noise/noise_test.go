package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

func TestSameSeedSameRealization(t *testing.T) {
	a := New(7, 4, 100, 0.01)
	b := New(7, 4, 100, 0.01)

	for i := range a.Increments {
		for j := range a.Increments[i] {
			if a.Increments[i][j] != b.Increments[i][j] {
				t.Fatalf("seed 7 diverged at step %d component %d", i, j)
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := New(1, 2, 50, 0.01)
	b := New(2, 2, 50, 0.01)

	same := true
	for i := range a.Increments {
		for j := range a.Increments[i] {
			if a.Increments[i][j] != b.Increments[i][j] {
				same = false
			}
		}
	}
	if same {
		t.Error("independent seeds produced identical realizations")
	}
}

func TestAtScalesTruncatedSteps(t *testing.T) {
	r := New(3, 1, 10, 0.01)

	full, err := r.At(0, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	half, err := r.At(0, 0.005)
	if err != nil {
		t.Fatal(err)
	}

	want := full[0] * math.Sqrt(0.5)
	if math.Abs(half[0]-want) > 1e-15 {
		t.Errorf("scaled increment = %g, want %g", half[0], want)
	}
}

func TestAtPastEndFails(t *testing.T) {
	r := New(3, 1, 5, 0.01)
	if _, err := r.At(5, 0.01); !errors.Is(err, dynamo.ErrNoiseGrid) {
		t.Errorf("expected ErrNoiseGrid, got %v", err)
	}
}

func TestIncrementVariance(t *testing.T) {
	const dt = 0.002
	r := New(11, 1, 20000, dt)

	sum, sumsq := 0.0, 0.0
	for _, row := range r.Increments {
		sum += row[0]
		sumsq += row[0] * row[0]
	}
	n := float64(len(r.Increments))
	mean := sum / n
	variance := sumsq/n - mean*mean

	if math.Abs(variance-dt) > dt*0.1 {
		t.Errorf("increment variance = %g, want ~%g", variance, dt)
	}
}
