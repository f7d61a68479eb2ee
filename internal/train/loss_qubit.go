package train

import (
	"context"
	"math/rand"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/ensemble"
	"github.com/san-kum/hybridsim/internal/noise"
	"github.com/san-kum/hybridsim/internal/solver"
	"github.com/san-kum/hybridsim/internal/systems"
)

// QubitLoss is the weighted mean decayed-population ratio over an ensemble
// of stochastic trajectories and their checkpoints. Every evaluation draws
// fresh initial states and noise realizations so gradient estimates stay
// unbiased.
type QubitLoss struct {
	System  *systems.Qubit
	Weight  float64
	NumTraj int

	// Sequential evaluates trajectories in order on one goroutine instead of
	// fanning out; results are identical either way, slot by slot.
	Sequential bool

	prob solver.Problem
	cfg  solver.Config
	rnd  *rand.Rand
}

// NewQubitLoss assembles the stochastic control objective. seed drives all
// future initial-state and noise sampling for this loss instance.
func NewQubitLoss(q *systems.Qubit, numCheckpoints, numTraj int, dt, weight float64, seed int64) (*QubitLoss, error) {
	prob, err := q.Problem(q.Checkpoints(numCheckpoints))
	if err != nil {
		return nil, err
	}
	return &QubitLoss{
		System:  q,
		Weight:  weight,
		NumTraj: numTraj,
		prob:    prob,
		cfg:     solver.Config{Dt: dt},
		rnd:     rand.New(rand.NewSource(seed)),
	}, nil
}

func (l *QubitLoss) Name() string { return "qubit_decay" }

// generator builds the per-trajectory inputs for one evaluation: trajectory
// i derives its state and noise from seedStart+i, so slot i is reproducible
// independent of scheduling.
func (l *QubitLoss) generator(seedStart int64) ensemble.Generator {
	steps := solver.StepsUpperBound(l.prob, l.cfg.Dt)
	dim := l.System.StateDim()

	return func(i int) (ad.Vector, *noise.Realization) {
		trajRnd := rand.New(rand.NewSource(seedStart + int64(i)))
		x0 := ad.Constants(l.System.RandomState(trajRnd))
		nz := noise.New(trajRnd.Int63(), dim, steps, l.cfg.Dt)
		return x0, nz
	}
}

func (l *QubitLoss) Eval(ctx context.Context, p []float64) (float64, []float64, error) {
	seedStart := l.rnd.Int63()

	return ad.Gradient(p, func(pv ad.Vector) (ad.Dual, error) {
		runner := &ensemble.Runner{Prob: l.prob, Cfg: l.cfg, Sequential: l.Sequential}
		results, err := runner.Run(ctx, pv, l.NumTraj, l.generator(seedStart))
		if err != nil {
			return ad.Dual{}, err
		}

		sum := ad.Const(0)
		count := 0
		for _, res := range results {
			for _, x := range res.States {
				sum = sum.Add(systems.DecayedRatio(x))
				count++
			}
		}
		return sum.Scale(l.Weight / float64(count)), nil
	})
}

// Evaluate runs a diagnostic ensemble of numTraj fresh trajectories at p,
// without gradients, and returns the batched solutions.
func (l *QubitLoss) Evaluate(ctx context.Context, p []float64, numTraj int) (*dynamo.Batch, error) {
	runner := &ensemble.Runner{Prob: l.prob, Cfg: l.cfg, Sequential: l.Sequential}
	results, err := runner.Run(ctx, ad.Constants(p), numTraj, l.generator(l.rnd.Int63()))
	if err != nil {
		return nil, err
	}
	return ensemble.ToBatch(results), nil
}
