package train

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/time/rate"

	"github.com/san-kum/hybridsim/internal/params"
)

// quadratic is a trivially minimizable loss for loop mechanics tests.
type quadratic struct{ fail error }

func (q *quadratic) Name() string { return "quadratic" }

func (q *quadratic) Eval(ctx context.Context, p []float64) (float64, []float64, error) {
	if q.fail != nil {
		return 0, nil, q.fail
	}
	loss := 0.0
	grad := make([]float64, len(p))
	for i, v := range p {
		loss += v * v
		grad[i] = 2 * v
	}
	return loss, grad, nil
}

func newVec(vals ...float64) *params.Vector {
	v := params.New(params.Layout{{Name: "w", Size: len(vals)}})
	copy(v.Data, vals)
	return v
}

func TestRunReducesQuadratic(t *testing.T) {
	p := newVec(3, -2)

	hist, err := Run(context.Background(), &quadratic{}, p, Config{Iterations: 200, LearningRate: 0.1}, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if hist.Iterations != 200 {
		t.Errorf("ran %d iterations, want 200", hist.Iterations)
	}
	if hist.Losses[len(hist.Losses)-1] >= hist.Losses[0] {
		t.Errorf("loss did not decrease: %g -> %g", hist.Losses[0], hist.Losses[len(hist.Losses)-1])
	}
}

func TestRunConfigValidation(t *testing.T) {
	p := newVec(1)

	if _, err := Run(context.Background(), &quadratic{}, p, Config{Iterations: 0, LearningRate: 0.1}, nil); err == nil {
		t.Error("zero iteration budget accepted")
	}
	if _, err := Run(context.Background(), &quadratic{}, p, Config{Iterations: 10, LearningRate: 0}, nil); err == nil {
		t.Error("zero learning rate accepted")
	}
}

func TestRunStopsOnLossFailure(t *testing.T) {
	boom := errors.New("trajectory 5 diverged")
	p := newVec(1)

	_, err := Run(context.Background(), &quadratic{fail: boom}, p, Config{Iterations: 10, LearningRate: 0.1}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped loss failure, got %v", err)
	}
}

func TestObserverHaltsEarly(t *testing.T) {
	p := newVec(5)

	hist, err := Run(context.Background(), &quadratic{}, p, Config{Iterations: 100, LearningRate: 0.1},
		func(it int, pv *params.Vector, loss float64) bool {
			return it == 9
		})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !hist.Halted {
		t.Error("history does not record the halt")
	}
	if hist.Iterations != 10 {
		t.Errorf("ran %d iterations, want 10", hist.Iterations)
	}
}

func TestObserverPanicDoesNotAbortTraining(t *testing.T) {
	p := newVec(1)

	hist, err := Run(context.Background(), &quadratic{}, p, Config{Iterations: 20, LearningRate: 0.1},
		func(it int, pv *params.Vector, loss float64) bool {
			panic("plot backend unavailable")
		})
	if err != nil {
		t.Fatalf("observer panic aborted training: %v", err)
	}
	if hist.Iterations != 20 {
		t.Errorf("ran %d iterations, want 20", hist.Iterations)
	}
}

func TestObserverReceivesSnapshot(t *testing.T) {
	p := newVec(5)

	_, err := Run(context.Background(), &quadratic{}, p, Config{Iterations: 5, LearningRate: 0.1},
		func(it int, pv *params.Vector, loss float64) bool {
			pv.Data[0] = 999 // must not leak into the optimizer's copy
			return false
		})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if p.Data[0] == 999 {
		t.Error("observer mutation reached the canonical parameter vector")
	}
}

func TestThrottledObserver(t *testing.T) {
	calls := 0
	obs := Throttled(rate.NewLimiter(rate.Limit(1), 1), func(it int, pv *params.Vector, loss float64) bool {
		calls++
		return false
	})

	p := newVec(1)
	for it := 0; it < 50; it++ {
		obs(it, p, 0)
	}

	if calls == 0 {
		t.Error("throttled observer never fired")
	}
	if calls > 2 {
		t.Errorf("throttled observer fired %d times in one burst, want at most 2", calls)
	}
}

func TestTeeHaltsIfAnyHalts(t *testing.T) {
	never := func(it int, pv *params.Vector, loss float64) bool { return false }
	always := func(it int, pv *params.Vector, loss float64) bool { return true }

	p := newVec(1)
	if Tee(never, never)(0, p, 0) {
		t.Error("tee halted with no halting observer")
	}
	if !Tee(never, always)(0, p, 0) {
		t.Error("tee ignored a halting observer")
	}
}
