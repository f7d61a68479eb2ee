package train

import (
	"context"

	"github.com/san-kum/hybridsim/internal/ad"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/solver"
	"github.com/san-kum/hybridsim/internal/systems"
)

// DosingLoss is the sum of squared differences between the fixed reference
// trajectory and the model trajectory at every checkpoint.
type DosingLoss struct {
	System    *systems.Dosing
	Reference *dynamo.Solution

	prob solver.Problem
	cfg  solver.Config
}

// NewDosingLoss generates the reference trajectory once from the known,
// non-trainable dynamics, then reuses it for every evaluation.
func NewDosingLoss(ctx context.Context, d *systems.Dosing, numCheckpoints int, dt float64) (*DosingLoss, error) {
	cps := d.Checkpoints(numCheckpoints)
	cfg := solver.Config{Dt: dt}

	refProb, err := d.ReferenceProblem(cps)
	if err != nil {
		return nil, err
	}
	refRes, err := solver.Integrate(ctx, refProb, ad.Constants(d.InitialState()), nil, cfg, nil)
	if err != nil {
		return nil, err
	}

	modelProb, err := d.ModelProblem(cps)
	if err != nil {
		return nil, err
	}

	return &DosingLoss{
		System:    d,
		Reference: refRes.Solution(),
		prob:      modelProb,
		cfg:       cfg,
	}, nil
}

func (l *DosingLoss) Name() string { return "dosing_sse" }

func (l *DosingLoss) Eval(ctx context.Context, p []float64) (float64, []float64, error) {
	return ad.Gradient(p, func(pv ad.Vector) (ad.Dual, error) {
		res, err := solver.Integrate(ctx, l.prob, ad.Constants(l.System.InitialState()), pv, l.cfg, nil)
		if err != nil {
			return ad.Dual{}, err
		}

		sum := ad.Const(0)
		for k, x := range res.States {
			for c := range x {
				diff := x[c].Shift(-l.Reference.States[k][c])
				sum = sum.Add(diff.Square())
			}
		}
		return sum, nil
	})
}

// Simulate runs the model trajectory at p and returns its recorded solution,
// for diagnostics and plotting.
func (l *DosingLoss) Simulate(ctx context.Context, p []float64) (*dynamo.Solution, error) {
	res, err := solver.Integrate(ctx, l.prob, ad.Constants(l.System.InitialState()),
		ad.Constants(p), l.cfg, nil)
	if err != nil {
		return nil, err
	}
	return res.Solution(), nil
}
