// Package ensemble evaluates many independent trajectories of one problem
// under shared parameters. Trajectories are embarrassingly parallel: worker i
// owns its initial state and noise realization and writes only slot i, so the
// batched result is index-stable regardless of completion order.
package ensemble

import (
	"context"
	"sync"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/noise"
	"github.com/san-kum/hybridsim/internal/solver"
)

// Generator produces the private inputs of trajectory i: its initial state
// and, for stochastic problems, a fresh noise realization. It must be safe
// to call from multiple goroutines with distinct i.
type Generator func(i int) (ad.Vector, *noise.Realization)

// Runner fans one problem out over n trajectories.
type Runner struct {
	Prob solver.Problem
	Cfg  solver.Config

	// Sequential forces in-order single-goroutine evaluation; useful when a
	// deterministic evaluation order matters more than throughput.
	Sequential bool
}

// Run integrates n trajectories and returns their results in generation
// order. Any trajectory failure aborts the whole evaluation and carries the
// trajectory index; no failed trajectory is silently dropped, since that
// would bias whatever average the caller computes.
func (r *Runner) Run(ctx context.Context, p ad.Vector, n int, gen Generator) ([]*solver.Result, error) {
	results := make([]*solver.Result, n)
	errs := make([]error, n)

	runOne := func(i int) {
		x0, nz := gen(i)
		res, err := solver.Integrate(ctx, r.Prob, x0, p, r.Cfg, nz)
		if err != nil {
			errs[i] = &dynamo.TrajError{Traj: i, Wrapped: err}
			return
		}
		results[i] = res
	}

	if r.Sequential {
		for i := 0; i < n; i++ {
			runOne(i)
		}
	} else {
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				runOne(idx)
			}(i)
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ToBatch gathers recorded solutions into the batched ensemble form.
func ToBatch(results []*solver.Result) *dynamo.Batch {
	b := &dynamo.Batch{Trajectories: make([]*dynamo.Solution, len(results))}
	for i, res := range results {
		b.Trajectories[i] = res.Solution()
	}
	return b
}
